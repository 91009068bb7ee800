package main

import (
	"log"

	infra "github.com/pot-code/scorm-courseware/internal/infrastructure"
	"github.com/pot-code/scorm-courseware/internal/infrastructure/driver"
	"github.com/pot-code/scorm-courseware/internal/infrastructure/logging"
	"github.com/pot-code/scorm-courseware/internal/infrastructure/uuid"
	ihttp "github.com/pot-code/scorm-courseware/internal/interfaces/http"
	"github.com/pot-code/scorm-courseware/internal/launch"
	"github.com/pot-code/scorm-courseware/internal/lesson"
	"github.com/pot-code/scorm-courseware/internal/progress"
	"github.com/pot-code/scorm-courseware/internal/user"
	"go.uber.org/zap"
)

func main() {
	log.SetFlags(log.Lshortfile | log.Ldate | log.Ltime)
	option, err := infra.InitConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(&logging.Config{
		FilePath: option.Logging.FilePath,
		Level:    option.Logging.Level,
		AppID:    option.AppID,
		Env:      option.Env,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %s\n", err)
	}
	logger = logger.With(
		zap.String("service.id", option.AppID),
	)
	defer logger.Sync()

	dbConn, err := driver.GetDBConnection(&driver.DBConfig{
		User:     option.Database.User,
		Password: option.Database.Password,
		MaxConn:  option.Database.MaxConn,
		Protocol: option.Database.Protocol,
		Driver:   option.Database.Driver,
		Host:     option.Database.Host,
		Port:     option.Database.Port,
		Query:    option.Database.Query,
		Schema:   option.Database.Schema,
	})
	if err != nil {
		log.Fatalf("Failed to create DB connection: %s\n", err)
	}
	logger.Debug("Create db connection instance", zap.String("db.driver", option.Database.Driver),
		zap.String("db.schema", option.Database.Schema),
		zap.String("db.host", option.Database.Host),
	)

	rdb := driver.NewRedisClient(option.KVStore.Host, option.KVStore.Port, option.KVStore.Password)

	IDGenerator := uuid.NewNanoIDGenerator(option.Security.IDLength)
	UserRepo := user.NewUserRepository(dbConn, IDGenerator)
	UserUseCase := user.NewUserUseCase(UserRepo)

	LessonRepo := lesson.NewLessonRepository(dbConn)
	LessonUseCase := lesson.NewLessonUseCase(LessonRepo)

	Snapshots := progress.NewSnapshotRepository(rdb)
	Manager := launch.NewManager(
		launch.StandaloneLocator,
		Snapshots,
		IDGenerator,
		option.Course.Lessons,
		logger,
	)

	ihttp.Serve(dbConn, rdb, option, Manager, UserUseCase, UserRepo, LessonUseCase, logger)
}
