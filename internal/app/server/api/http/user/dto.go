package user

type registerInput struct {
	Body registerRequest
}

type registerRequest struct {
	Email    string `json:"email" format:"email" doc:"User email"`
	Name     string `json:"name,omitempty" doc:"Display name"`
	Password string `json:"password" minLength:"8" doc:"Password, at least 8 characters"`
}

type registerOutput struct {
	Body RegisterResponse
}

type RegisterResponse struct {
	ID     int64  `json:"user_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type loginInput struct {
	Body loginRequest
}

type loginRequest struct {
	Email    string `json:"email" format:"email" doc:"User email"`
	Password string `json:"password" doc:"Password"`
}

type loginOutput struct {
	Body LoginResponse
}

type meOutput struct {
	Body MeResponse
}

type MeResponse struct {
	ID         int64  `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	TeamID     int64  `json:"team_id"`
	Role       string `json:"role"`
	Subscribed bool   `json:"subscribed"`
}

type LoginResponse struct {
	Token  string `json:"token,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}
