package consensus

import (
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
	"github.com/FranklinWaller/Rutile/util/panics"
)

var log = logger.RegisterSubSystem("CHAN")
var spawn = panics.GoroutineWrapperFunc(log)
