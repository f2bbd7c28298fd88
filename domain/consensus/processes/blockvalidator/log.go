package blockvalidator

import (
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BLVL")
