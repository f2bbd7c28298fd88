package genesisbuilder

import (
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
)

var log = logger.RegisterSubSystem("GNSS")
