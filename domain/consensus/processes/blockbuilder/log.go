package blockbuilder

import (
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BDLB")
