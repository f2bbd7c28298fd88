package ldb

import (
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
)

var log = logger.RegisterSubSystem("KVDB")
