//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/packing-advisor/internal/bootstrap"
	"github.com/yanqian/packing-advisor/internal/domain/forecast"
	"github.com/yanqian/packing-advisor/internal/domain/packing"
	"github.com/yanqian/packing-advisor/internal/infra/config"
	"github.com/yanqian/packing-advisor/internal/infra/weather/openmeteo"
	httpiface "github.com/yanqian/packing-advisor/internal/interface/http"
	"github.com/yanqian/packing-advisor/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideCatalog,
		providePackingConfig,
		provideForecastConfig,
		provideWeatherClient,
		provideForecastCache,
		provideTracer,
		packing.NewEngine,
		forecast.NewService,
		packing.NewService,
		wire.Bind(new(forecast.Provider), new(*openmeteo.Client)),
		wire.Bind(new(packing.ForecastSource), new(forecast.Service)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
