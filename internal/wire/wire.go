package wire

import (
	"Atheneum/internal/api"
	"Atheneum/internal/api/config"
	"Atheneum/internal/api/handler"
	"Atheneum/internal/job"
	"Atheneum/internal/pkg/counter"
	"Atheneum/internal/pkg/cron"
	"Atheneum/internal/pkg/kafka"
	pkgmongo "Atheneum/internal/pkg/mongo"
	nostrutil "Atheneum/internal/pkg/nostr"
	"Atheneum/internal/pkg/redis"
	"Atheneum/internal/repository"
	"Atheneum/internal/service"
	log "log/slog"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装应用运行需要的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepository(db)
	draftRepo := repository.NewDraftRepository(db)
	courseDraftRepo := repository.NewCourseDraftRepository(db)
	draftLessonRepo := repository.NewDraftLessonRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	publishRepo := repository.NewPublishRepository(db)
	viewCountRepo := repository.NewViewCountRepository(db)

	// 快速存储：Redis 没配就退化到进程内存，单实例部署也能跑
	var store counter.Store
	if redis.Enabled() {
		store = counter.NewRedisStore()
	} else {
		log.Warn("redis not configured, view counters use in-process memory store")
		store = counter.NewMemoryStore()
	}

	var archive pkgmongo.EventArchive
	if mongoDB != nil {
		var err error
		if archive, err = pkgmongo.NewEventArchive(mongoDB); err != nil {
			return nil, err
		}
	} else {
		log.Warn("mongo not configured, signed events will not be archived")
		archive = pkgmongo.NoopEventArchive{}
	}

	publisher := nostrutil.NewPublisher(cfg.Nostr.PublishTimeout)

	userService := service.NewUserService(userRepo)
	draftService := service.NewDraftService(draftRepo)
	courseDraftService := service.NewCourseDraftService(courseDraftRepo, draftLessonRepo, draftRepo, resourceRepo)
	lessonService := service.NewLessonService(draftRepo, resourceRepo, draftLessonRepo, courseDraftRepo, archive)
	publishService := service.NewPublishService(
		draftRepo, courseDraftRepo, draftLessonRepo, resourceRepo,
		publishRepo, userRepo, lessonService, archive, publisher)
	republishService := service.NewRepublishService(
		resourceRepo, courseRepo, lessonRepo, userRepo, archive, publisher, publishService)
	viewService := service.NewViewService(store, viewCountRepo, cfg.Views.StalenessWindowMinutes)

	handlers := &api.HandlersGroup{
		UserHandler:        handler.NewUserHandler(userService),
		DraftHandler:       handler.NewDraftHandler(draftService),
		CourseDraftHandler: handler.NewCourseDraftHandler(courseDraftService, lessonService),
		PublishHandler:     handler.NewPublishHandler(publishService, republishService),
		ViewHandler:        handler.NewViewHandler(viewService),
		MediaHandler:       handler.NewMediaHandler(),
	}

	router := api.SetupRouter(handlers)

	viewFlushJob := job.NewViewFlushJob(viewService)
	cronMgr := cron.NewCronManager(viewFlushJob)

	// Kafka 没配 broker 就不起消费者
	var kafkaMgr *kafka.ConsumerManager
	if len(cfg.Kafka.Brokers) > 0 {
		var err error
		if kafkaMgr, err = kafka.NewConsumerManager(cfg, viewService); err != nil {
			return nil, err
		}
	} else {
		log.Warn("kafka not configured, view ingest consumer disabled")
	}

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}
