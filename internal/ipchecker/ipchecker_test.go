package ipchecker

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	disabled, err := New("")
	require.NoError(t, err)
	assert.False(t, disabled.Enabled())
	assert.False(t, disabled.Check(net.ParseIP("127.0.0.1")))

	_, err = New("10.0.0.1")
	assert.Error(t, err)
}

func TestClientIP(t *testing.T) {
	type tTestCase struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}
	testCases := []tTestCase{
		{name: "x-real-ip", headers: map[string]string{"X-Real-IP": "10.1.2.3"}, remote: "1.1.1.1:5000", want: "10.1.2.3"},
		{name: "x-forwarded-for", headers: map[string]string{"X-Forwarded-For": "10.9.9.9, 172.16.0.1"}, remote: "1.1.1.1:5000", want: "10.9.9.9"},
		{name: "remote addr", remote: "192.168.0.7:40000", want: "192.168.0.7"},
		{name: "garbage headers fall through", headers: map[string]string{"X-Real-IP": "nope", "X-Forwarded-For": "nope"}, remote: "192.168.0.8:1", want: "192.168.0.8"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/stats", nil)
			request.RemoteAddr = testCase.remote
			for key, value := range testCase.headers {
				request.Header.Set(key, value)
			}

			ip, err := ClientIP(request)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, ip.String())
		})
	}
}

func TestTrustedOnly(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	checker, err := New("10.0.0.0/8")
	require.NoError(t, err)
	disabled, err := New("")
	require.NoError(t, err)

	testCases := []struct {
		name    string
		checker *IPChecker
		realIP  string
		want    int
	}{
		{name: "inside subnet", checker: checker, realIP: "10.20.30.40", want: http.StatusOK},
		{name: "outside subnet", checker: checker, realIP: "192.168.1.1", want: http.StatusForbidden},
		{name: "restriction disabled", checker: disabled, realIP: "192.168.1.1", want: http.StatusOK},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/stats", nil)
			request.Header.Set("X-Real-IP", testCase.realIP)
			recorder := httptest.NewRecorder()

			testCase.checker.TrustedOnly(ok).ServeHTTP(recorder, request)

			assert.Equal(t, testCase.want, recorder.Code)
		})
	}
}
