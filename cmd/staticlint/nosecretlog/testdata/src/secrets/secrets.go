package secrets

import "logger"

type request struct {
	Email    string
	Password string
}

func login(email, password string, req request) {
	logger.Log.Debugln("login attempt", email)
	logger.Log.Debugln("Missing password")
	logger.Log.Debugln("login attempt", password) // want `do not log passwords \(password\)`

	logger.Log.Infow("register", "email", req.Email, "pw", req.Password) // want `do not log passwords \(Password\)`
}
