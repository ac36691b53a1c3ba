package injector

import (
	"github.com/lk2023060901/knowcast-backend/internal/conf"
	"github.com/lk2023060901/knowcast-backend/internal/pkg/logger"
	"github.com/lk2023060901/knowcast-backend/internal/server"
)

// App encapsulates all application dependencies
type App struct {
	Config     *conf.Config
	Logger     *logger.Logger
	HTTPServer *server.HTTPServer
}
