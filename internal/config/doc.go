// Package config provides centralized configuration management for Enrolment Pulse.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//	1. Default values (Default())
//	2. A YAML file: $ENROL_CONFIG_FILE, config.yaml or configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern ENROL_<SECTION>_<KEY>:
//
//	ENROL_SERVER_PORT=8080
//	ENROL_DATASET_FILE=data/aadhar_demographic.csv
//	ENROL_FORECAST_WINDOW=7
//	ENROL_LOGGING_LEVEL=debug
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	path := cfg.GetDatasetPath()
package config
