// This file is a helper for running tests with testcontainers.
// It is used by the integration tests and by the standalone cmd/testcontainers executable.
// Reads DB_* environment variables, usually loaded from a .env file.
//

package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/localnerve/transform-studio/internal/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Database container settings, overridable from the environment
const (
	defaultMariaDBImage  = "mariadb:11"
	defaultPostgresImage = "postgres:16-alpine"
	defaultRootPassword  = "transform-studio-root"
	defaultDatabase      = "transform_studio"
	defaultUser          = "studio"
	defaultPassword      = "studio-password"
)

type TestContainers struct {
	Network     *testcontainers.DockerNetwork
	DBContainer testcontainers.Container

	// Config points the service at the mapped database port
	Config *config.Config
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// CreateDatabaseContainer starts the database named by dbType ("mariadb",
// "mysql" or "postgres") and prepares the application database and user.
func CreateDatabaseContainer(t *testing.T, dbType string) (*TestContainers, error) {
	ctx := context.Background()
	testContainers := &TestContainers{}

	// Create a network
	nw, err := network.New(ctx)
	if err != nil {
		exitWithError(t, err, "Failed to create network")
	}
	testContainers.Network = nw
	networkName := nw.Name

	dbImage, portNumber, waitLog := defaultMariaDBImage, "3306", "ready for connections"
	if dbType == "postgres" {
		dbImage, portNumber, waitLog = defaultPostgresImage, "5432", "database system is ready to accept connections"
		dbImage = getEnv("POSTGRES_IMAGE", dbImage)
	} else {
		dbImage = getEnv("DB_IMAGE", dbImage)
	}

	tcpDbPort, err := nat.NewPort("tcp", portNumber)
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to create DB port")
	}

	local, err := imageExists(ctx, dbImage)
	if err != nil {
		logMessage(t, "Could not inspect local images: %v", err)
	} else if !local {
		logMessage(t, "Image %s not found locally, pulling...", dbImage)
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        dbImage,
			ExposedPorts: []string{string(tcpDbPort)},
			Env:          getDBInitEnvMap(dbType),
			// Both images log readiness twice, once for the init server
			WaitingFor: wait.ForAll(
				wait.ForLog(waitLog).WithOccurrence(2),
				wait.ForListeningPort(tcpDbPort),
			).WithStartupTimeoutDefault(90 * time.Second),
			Networks: []string{networkName},
			NetworkAliases: map[string][]string{
				networkName: {getEnv("DB_HOST", "database")},
			},
		},
		Started: true,
	})
	if err != nil {
		testContainers.Terminate(t)
		exitWithError(t, err, "Failed to start database")
	}
	testContainers.DBContainer = dbContainer

	dbHost, _ := dbContainer.Host(ctx)
	dbPort, _ := dbContainer.MappedPort(ctx, tcpDbPort)

	switch dbType {
	case "mysql", "mariadb":
		if err := performMySqlDBInit(dbHost, dbPort); err != nil {
			testContainers.Terminate(t)
			exitWithError(t, err, "Failed to initialize database")
		}
	}

	testContainers.Config = &config.Config{
		StoreType:         config.StoreDatabase,
		DBType:            dbType,
		DBHost:            dbHost,
		DBPort:            dbPort.Port(),
		DBDatabase:        getEnv("DB_DATABASE", defaultDatabase),
		DBUser:            getEnv("DB_USER", defaultUser),
		DBPassword:        getEnv("DB_PASSWORD", defaultPassword),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
	}

	logMessage(t, "DB_TYPE=%s", dbType)
	logMessage(t, "DB_HOST=%s", dbHost)
	logMessage(t, "DB_PORT=%s", dbPort.Port())
	logMessage(t, "Database testcontainer started successfully")
	return testContainers, nil
}

func getDBInitEnvMap(dbType string) map[string]string {
	switch dbType {
	case "postgres":
		return map[string]string{
			"POSTGRES_PASSWORD": getEnv("DB_PASSWORD", defaultPassword),
			"POSTGRES_USER":     getEnv("DB_USER", defaultUser),
			"POSTGRES_DB":       getEnv("DB_DATABASE", defaultDatabase),
		}
	default:
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": getEnv("DB_ROOT_PASSWORD", defaultRootPassword),
			"MYSQL_DATABASE":      getEnv("DB_DATABASE", defaultDatabase),
		}
	}
}

// performMySqlDBInit creates the application user with rights on the
// application database only.
func performMySqlDBInit(dbHost string, dbPort nat.Port) error {
	db, err := sql.Open("mysql", fmt.Sprintf("root:%s@tcp(%s:%s)/", getEnv("DB_ROOT_PASSWORD", defaultRootPassword), dbHost, dbPort.Port()))
	if err != nil {
		return fmt.Errorf("failed to connect for setup: %w", err)
	}
	defer db.Close()

	// Wait for connection to be really ready
	for i := 0; i < 30; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return fmt.Errorf("database not ready after 30 seconds: %w", err)
	}

	database := getEnv("DB_DATABASE", defaultDatabase)
	user := getEnv("DB_USER", defaultUser)
	statements := []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", database),
		fmt.Sprintf("CREATE USER IF NOT EXISTS '%s'@'%%' IDENTIFIED BY '%s'", user, getEnv("DB_PASSWORD", defaultPassword)),
		fmt.Sprintf("GRANT ALL PRIVILEGES ON `%s`.* TO '%s'@'%%'", database, user),
		"FLUSH PRIVILEGES",
	}
	for _, q := range statements {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), q)
		}
	}
	return nil
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, image := range images {
		for _, tag := range image.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}

	return false, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
