package consensus

import (
	"github.com/FranklinWaller/Rutile/domain/dagconfig"
	"github.com/pkg/errors"
)

// Role is the part a node plays in the network
type Role string

const (
	// RoleFull nodes validate every block and advance the milestone
	RoleFull Role = "full"

	// RoleLight nodes validate every block but never advance the milestone
	RoleLight Role = "light"

	// RoleClient nodes only follow the DAG
	RoleClient Role = "client"
)

// ParseRole returns the Role named by role
func ParseRole(role string) (Role, error) {
	switch Role(role) {
	case RoleFull, RoleLight, RoleClient:
		return Role(role), nil
	}
	return "", errors.Errorf("unknown role %q; must be one of %s, %s or %s",
		role, RoleFull, RoleLight, RoleClient)
}

// RunsMilestoneConsensus returns whether a node of this role advances the milestone
func (r Role) RunsMilestoneConsensus() bool {
	return r == RoleFull
}

// Config is a descriptor of the static configuration of a Consensus
type Config struct {
	dagconfig.Params
	Role Role

	// BlockCacheSize is the number of decoded blocks kept in memory
	BlockCacheSize int
}

const defaultBlockCacheSize = 200

func (config *Config) blockCacheSize() int {
	if config.BlockCacheSize <= 0 {
		return defaultBlockCacheSize
	}
	return config.BlockCacheSize
}
