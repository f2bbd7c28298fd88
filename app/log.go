package app

import (
	"github.com/FranklinWaller/Rutile/infrastructure/logger"
	"github.com/FranklinWaller/Rutile/util/panics"
)

var log = logger.RegisterSubSystem("RTLD")
var spawn = panics.GoroutineWrapperFunc(log)
