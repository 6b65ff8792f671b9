package services_test

import (
	"github.com/mentorbridge/mentorbridge-api/pkg/logger"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "error",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}
