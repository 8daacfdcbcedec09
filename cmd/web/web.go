package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/onemsu/onemsu-be/config"
	"github.com/onemsu/onemsu-be/controllers"
	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/db/file"
	"github.com/onemsu/onemsu-be/db/mysql"
	"github.com/onemsu/onemsu-be/routes"
	"github.com/onemsu/onemsu-be/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("an error occurred while loading configuration", err)
	}

	db, err := connectDatabase(cfg)
	if err != nil {
		log.Fatal("an error occurred while connecting to the store", err)
	}
	defer db.Close()

	authClient, bucket := maybeFirebase(cfg)
	graph := maybeSocialGraph(cfg)
	if graph != nil {
		defer graph.Close(context.Background())
	}
	mailer := services.NewMailer(cfg.SMTP)

	directory, err := controllers.NewDirectoryController(context.Background(), db)
	if err != nil {
		log.Fatal("an error occurred while initializing the user directory", err)
	}
	groupController, err := controllers.NewGroupController(context.Background(), db)
	if err != nil {
		log.Fatal("an error occurred while initializing the group controller", err)
	}

	gin.SetMode(os.Getenv("GIN_MODE"))
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.AddHealthCheckRoutes(r)
	api := r.Group("/api")
	routes.AddAuthRoutes(api, db, authClient, mailer, directory, cfg)
	routes.AddUserRoutes(api, db, directory, bucket, authClient, cfg.JWTSecret)
	routes.AddFollowRoutes(api, db, graph, authClient, cfg.JWTSecret)
	routes.AddPostRoutes(api, db, authClient, cfg.JWTSecret)
	routes.AddFeedRoutes(api, db, authClient, cfg.JWTSecret)
	routes.AddThreadRoutes(api, db, authClient, cfg.JWTSecret)
	routes.AddNotificationRoutes(api, db, authClient, cfg.JWTSecret)
	routes.AddGroupRoutes(api, db, groupController, authClient, cfg.JWTSecret)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("error when attempting to run web server", err)
	}
}

func connectDatabase(cfg *config.Config) (appDb.Database, error) {
	if cfg.UsesMySQL() {
		return mysql.GetDatabase(cfg.DB)
	}
	log.Printf("no DB_HOST configured; using the file store under %v\n", cfg.DataDir)
	return file.GetDatabase(cfg.DataDir)
}

// maybeFirebase initializes the identity provider and uploads bucket when
// credentials are present. Without them the server runs in fallback mode with
// local credentials only.
func maybeFirebase(cfg *config.Config) (*firebaseAuth.Client, *services.StorageBucket) {
	if err := configureFirebaseCredentials(); err != nil {
		log.Println("firebase disabled:", err)
		return nil, nil
	}
	app, err := firebase.NewApp(context.Background(), nil)
	if err != nil {
		log.Fatalf("error initializing firebase: %v\n", err)
	}
	authClient, err := app.Auth(context.Background())
	if err != nil {
		log.Fatal("error initializing auth client", err)
	}

	var bucket *services.StorageBucket
	if cfg.FirebaseBucket != "" {
		bucket, err = services.NewStorageBucket(context.Background(), app, cfg.FirebaseBucket)
		if err != nil {
			log.Fatal("an error occurred while connecting to the uploads bucket", err)
		}
	}
	return authClient, bucket
}

func maybeSocialGraph(cfg *config.Config) *services.SocialGraph {
	if cfg.Neo4j == nil {
		return nil
	}
	graph, err := services.NewSocialGraph(context.Background(), cfg.Neo4j)
	if err != nil {
		log.Fatal("an error occurred while connecting to the graph mirror", err)
	}
	return graph
}

const (
	CredentialsPathEnvVar = "GOOGLE_APPLICATION_CREDENTIALS"
	CredentialsJsonEnvVar = "GOOGLE_APPLICATION_CREDENTIALS_JSON"
	TargetCredentialsFile = "./google-application-credentials.json"
)

func configureFirebaseCredentials() error {
	credentialsPath, hasCredentialsPath := os.LookupEnv(CredentialsPathEnvVar)
	if hasCredentialsPath {
		log.Printf("Credentials path detected in env. Expecting credentials to be at %v\n", credentialsPath)
		return nil
	}
	credentialsJson, hasCredentialsJson := os.LookupEnv(CredentialsJsonEnvVar)
	if hasCredentialsJson {
		log.Println("Credentials JSON string detected in env.")
		err := os.WriteFile(TargetCredentialsFile, []byte(credentialsJson), 400)
		if err != nil {
			return fmt.Errorf("error writing credentials to temp file, %w", err)
		}
		err = os.Setenv(CredentialsPathEnvVar, TargetCredentialsFile)
		if err != nil {
			return fmt.Errorf("error setting %v env var %w", CredentialsPathEnvVar, err)
		}
		return nil
	}
	return fmt.Errorf("must specify either %v (a path)"+
		" or %v (credentials as JSON string)", CredentialsPathEnvVar, CredentialsJsonEnvVar)
}
