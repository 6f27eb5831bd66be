/*
 * Copyright 2025 the dbparity authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dbparity/dbparity/internal/config"
	_ "github.com/dbparity/dbparity/internal/database/mysql"
	_ "github.com/dbparity/dbparity/internal/database/oracle"
	_ "github.com/dbparity/dbparity/internal/database/postgres"
	_ "github.com/dbparity/dbparity/internal/database/sqlserver"
)

var (
	configFile  string
	environment string
	verbose     bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dbparity",
	Short: "Validate that two ETL pipelines load equivalent data",
	Long: `dbparity compares tables loaded by the legacy Informatica pipeline against
the replacement Python ETL pipeline, across environments, and reports schema
and row-level differences.`,
	PersistentPreRunE: initConfigAndLogger,
	SilenceUsage:      true,
}

func initConfigAndLogger(cmd *cobra.Command, args []string) error {
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

func requireEnvironment() error {
	if environment == "" {
		return fmt.Errorf("--environment is required (one of: %v)", cfg.EnvironmentNames())
	}
	_, err := cfg.Environment(environment)
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "dbparity.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&environment, "environment", "e", "", "Environment to compare (Development, Pre-Production, Production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(serveCmd)
}
