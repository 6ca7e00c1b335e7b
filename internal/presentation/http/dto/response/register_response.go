package response

import "github.com/sangkips/tillpoint/internal/application/register"

// RegisterResponse pairs the outcome of a register action with the
// session state that followed it
type RegisterResponse struct {
	Result interface{}    `json:"result,omitempty"`
	State  register.State `json:"state"`
}
