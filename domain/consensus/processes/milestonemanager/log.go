package milestonemanager

import (
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
	"github.com/FranklinWaller/Rutile/util/panics"
)

var log = logger.RegisterSubSystem("MLST")
var spawn = panics.GoroutineWrapperFunc(log)
