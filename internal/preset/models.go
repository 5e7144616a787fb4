package preset

import (
	"time"

	"galaxy-server/internal/galaxy"
)

// Preset is a named parameter set and seed that regenerates one exact galaxy
type Preset struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Parameters galaxy.Parameters `json:"parameters"`
	Seed       uint64            `json:"seed,string"`
	CreatedBy  string            `json:"created_by"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type CreateRequest struct {
	Name string `json:"name"`
}
