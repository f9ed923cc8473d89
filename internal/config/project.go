package config

import (
	"context"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/archesproject/arches-rdm-example-project/internal/env"
	"github.com/archesproject/arches-rdm-example-project/internal/secrets"
	"github.com/archesproject/arches-rdm-example-project/internal/storage"
)

const (
	appName = "arches_rdm_example_project"

	appVersion       = "1.0.0-a.0"
	minArchesVersion = "7.5.0b0"
	maxArchesVersion = "7.5.1"

	defaultESPassword = "E1asticSearchforArche5"
	// insecureSecretKey is only meant for local development.
	insecureSecretKey = "69i^0^enn7-%nww6no&e%+62($hto5vk0(#tp+ygl1!9$2_^5y"
)

var installedApps = []string{
	"webpack_loader",
	"django.contrib.admin",
	"django.contrib.auth",
	"django.contrib.contenttypes",
	"django.contrib.sessions",
	"django.contrib.messages",
	"django.contrib.staticfiles",
	"django.contrib.gis",
	"arches",
	"arches.app.models",
	"arches.management",
	"guardian",
	"captcha",
	"revproxy",
	"corsheaders",
	"oauth2_provider",
	"django_celery_results",
	"compressor",
	appName,
	"arches_rdm",
}

var archesApplications = []string{"arches_rdm"}

var middleware = []string{
	"corsheaders.middleware.CorsMiddleware",
	"django.middleware.security.SecurityMiddleware",
	"django.contrib.sessions.middleware.SessionMiddleware",
	"django.middleware.locale.LocaleMiddleware",
	"django.middleware.common.CommonMiddleware",
	"django.middleware.csrf.CsrfViewMiddleware",
	"arches.app.utils.middleware.ModifyAuthorizationHeader",
	"oauth2_provider.middleware.OAuth2TokenMiddleware",
	"django.contrib.auth.middleware.AuthenticationMiddleware",
	"django.contrib.messages.middleware.MessageMiddleware",
	"arches.app.utils.middleware.SetAnonymousUser",
}

// resolved holds everything the project layer reads from the environment,
// the secret store and the storage selector.
type resolved struct {
	appRoot string
	rootDir string

	secretsMode string
	creds       secrets.Credentials
	esPort      int
	esProtocol  string
	esValidate  bool

	debug               bool
	webpackPort         int
	kibanaURL           string
	kibanaBasepath      string
	resourceImportLog   string
	archesLogPath       string
	storage             storage.Selection
	secretKey           string
	allowedHosts        []string
	staticRoot          string
	rabbitUser          string
	rabbitPass          string
	publicServerAddress string
}

// resolve runs the environment, secrets and storage passes in that order.
func (l *loader) resolve(ctx context.Context, reader *env.Reader, appRoot, rootDir string) (resolved, error) {
	r := resolved{appRoot: appRoot, rootDir: rootDir}
	var err error

	r.secretsMode = reader.Optional("SECRETS_MODE", secrets.ModeEnv)
	r.creds.Database = secrets.Bundle{
		User:     reader.Optional("PGUSERNAME", "postgres"),
		Password: reader.Optional("PGPASSWORD", "postgis"),
		Host:     reader.Optional("PGHOST", "localhost"),
		Port:     reader.Optional("PGPORT", "5432"),
	}
	r.creds.Search = secrets.Bundle{
		User:     reader.Optional("ESUSER", "elastic"),
		Password: reader.Optional("ESPASSWORD", defaultESPassword),
		Host:     reader.Optional("ESHOST", "localhost"),
	}
	if r.esPort, err = reader.OptionalInt("ESPORT", 9200); err != nil {
		return resolved{}, err
	}
	r.creds.Search.Port = strconv.Itoa(r.esPort)

	if r.webpackPort, err = reader.OptionalInt("WEBPACKDEVELOPMENTSERVERPORT", 8022); err != nil {
		return resolved{}, err
	}
	r.esProtocol = reader.Optional("ESPROTOCOL", "http")
	r.esValidate = reader.Optional("ESVALIDATE", "True") != "False"
	r.debug = reader.OptionalFlag("DJANGO_DEBUG", false)
	r.kibanaURL = reader.Optional("KIBANA_URL", "http://localhost:5601/")
	r.kibanaBasepath = reader.Optional("KIBANACONFIGBASEPATH", "kibana")
	r.resourceImportLog = reader.Optional("RESOURCEIMPORTLOG", filepath.Join(appRoot, "logs", "resource_import.log"))
	r.archesLogPath = reader.Optional("ARCHESLOGPATH", filepath.Join(appRoot, "arches.log"))

	resolver := secrets.NewResolver(reader, l.secretsClient, l.logger)
	if r.creds, err = resolver.Resolve(ctx, r.secretsMode, r.creds); err != nil {
		return resolved{}, err
	}

	if r.storage, err = storage.Select(ctx, reader, l.memorySource); err != nil {
		return resolved{}, err
	}

	r.secretKey = reader.Optional("DJANGO_SECRET_KEY", insecureSecretKey)
	r.allowedHosts = strings.Fields(reader.Optional("DOMAIN_NAMES", "*"))
	r.staticRoot = reader.Optional("DJANGO_STATIC_ROOT", "/var/www/media/")
	r.rabbitUser = reader.Optional("RABBITMQ_USER", "guest")
	r.rabbitPass = reader.Optional("RABBITMQ_PASS", "guest")
	r.publicServerAddress = reader.Optional("PUBLIC_SERVER_ADDRESS", "http://localhost:8000/")

	return r, nil
}

// projectSettings layers the project's values over base.
func projectSettings(base Settings, r resolved) Settings {
	s := base

	s.AppName = appName
	s.AppRoot = r.appRoot
	s.RootDir = r.rootDir
	s.AppVersion = appVersion
	s.MinArchesVersion = minArchesVersion
	s.MaxArchesVersion = maxArchesVersion
	s.SecretsMode = r.secretsMode

	s.SecretKey = r.secretKey
	s.Debug = r.debug
	s.AllowedHosts = r.allowedHosts
	s.RootURLConf = appName + ".urls"
	s.WSGIApplication = appName + ".wsgi.application"
	s.InstalledApps = slices.Clone(installedApps)
	s.ArchesApplications = slices.Clone(archesApplications)
	s.Middleware = slices.Clone(middleware)
	s.SessionCookieName = appName
	s.DataUploadMaxMemorySize = 15728640
	s.PublicServerAddress = r.publicServerAddress
	s.ForceScriptName = nil
	s.SilencedSystemChecks = nil
	if s.Debug {
		s.SilencedSystemChecks = []string{"captcha.recaptcha_test_key_error"}
	}

	db := r.creds.Database
	s.DBName = appName
	s.DBUser = db.User
	s.DBPassword = db.Password
	s.DBHost = db.Host
	s.DBPort = db.Port
	s.AWSRegion = r.creds.Region
	s.Databases = map[string]Database{
		"default": {
			AtomicRequests:  false,
			AutoCommit:      true,
			ConnMaxAge:      0,
			Engine:          "django.contrib.gis.db.backends.postgis",
			Host:            db.Host,
			Name:            appName,
			Options:         map[string]any{},
			Password:        db.Password,
			Port:            db.Port,
			PostgisTemplate: "template_postgis",
			User:            db.User,
		},
	}

	es := r.creds.Search
	s.ESHost = es.Host
	s.ESPort = r.esPort
	s.ESUser = es.User
	s.ESPassword = es.Password
	s.ESProtocol = r.esProtocol
	s.ElasticsearchHosts = []ElasticsearchHost{{Scheme: r.esProtocol, Host: es.Host, Port: r.esPort}}
	s.ElasticsearchConnectionOptions = ElasticsearchConnectionOptions{
		Timeout:   30,
		BasicAuth: []string{es.User, es.Password},
	}
	s.ElasticsearchPrefix = appName
	s.ElasticsearchCustomIndexes = []string{}
	s.ESValidateCert = r.esValidate
	s.KibanaURL = r.kibanaURL
	s.KibanaConfigBasepath = r.kibanaBasepath

	s.StorageBackend = r.storage.Backend
	s.StorageOptions = r.storage.Options
	s.Storages = storage.Storages(r.storage)

	s.StaticURL = "/static/"
	s.StaticRoot = r.staticRoot
	s.MediaURL = "/files/"
	s.MediaRoot = r.appRoot
	s.StaticfilesDirs = buildStaticfilesDirs(r.rootDir, r.appRoot)
	s.LocalePaths = append(slices.Clone(base.LocalePaths), filepath.Join(r.appRoot, "locale"))
	s.SystemSettingsLocalPath = filepath.Join(r.appRoot, "system_settings", "System_Settings.json")
	s.WebpackLoader = map[string]WebpackLoaderEntry{
		"DEFAULT": {StatsFile: filepath.Join(r.appRoot, "webpack", "webpack-stats.json")},
	}
	s.WebpackDevelopmentServerPort = r.webpackPort
	s.ResourceImportLog = r.resourceImportLog
	s.ArchesLogPath = r.archesLogPath
	s.Logging = projectLogging(filepath.Join(r.appRoot, "arches.log"))

	s.DatatypeLocations = append(slices.Clone(base.DatatypeLocations), appName+".datatypes")
	s.FunctionLocations = append(slices.Clone(base.FunctionLocations), appName+".functions")
	s.ETLModuleLocations = append(slices.Clone(base.ETLModuleLocations), appName+".etl_modules")
	s.SearchComponentLocations = append(slices.Clone(base.SearchComponentLocations), appName+".search_components")

	s.LoadDefaultOntology = false
	s.LoadPackageOntologies = true
	s.FileTypeChecking = false
	s.FileTypes = []string{"bmp", "gif", "jpg", "jpeg", "pdf", "png", "psd", "rtf", "tif", "tiff", "xlsx", "csv", "zip"}
	s.DefaultResourceImportUser = ResourceImportUser{Username: "admin", UserID: 1}
	s.Caches = map[string]Cache{
		"default":         {Backend: "django.core.cache.backends.dummy.DummyCache"},
		"user_permission": {Backend: "django.core.cache.backends.db.DatabaseCache", Location: "user_permission_cache"},
	}
	s.HideEmptyNodesInReport = false
	s.BypassUniqueConstraintTileValidation = false
	s.BypassRequiredValueTileValidation = false
	s.DateImportExportFormat = "%Y-%m-%d"
	s.ExportDataFieldsInCardOrder = false
	s.CacheByUser = map[string]int{"anonymous": 3600 * 24}
	s.TileCacheTimeout = 600
	s.ClusterDistanceMax = 5000
	s.GraphModelCacheTimeout = nil
	s.OAuthClientID = ""
	s.AppTitle = "Arches | Heritage Data Management"
	s.CopyrightText = "All Rights Reserved."
	s.CopyrightYear = "2019"
	s.EnableCaptcha = false
	s.NoCaptcha = true
	s.EmailHostUser = "xxxx@xxx.com"
	s.DefaultFromEmail = s.EmailHostUser

	s.CeleryBrokerURL = brokerURL(r.rabbitUser, r.rabbitPass)
	s.CeleryAcceptContent = []string{"json"}
	s.CeleryResultBackend = "django-db"
	s.CeleryTaskSerializer = "json"
	s.CelerySearchExportExpires = 24 * 3600
	s.CelerySearchExportCheck = 3600
	s.CeleryBeatSchedule = map[string]BeatTask{
		"delete-expired-search-export": {
			Task:     "arches.app.tasks.delete_file",
			Schedule: s.CelerySearchExportCheck,
		},
		"notification": {
			Task:     "arches.app.tasks.message",
			Schedule: s.CelerySearchExportCheck,
			Args:     []any{"Celery Beat is Running"},
		},
	}
	s.CeleryCheckOnlyInspectBroker = false

	s.CantaloupeDir = filepath.Join(r.rootDir, "uploadedfiles")
	s.CantaloupeHTTPEndpoint = "http://localhost:8182/"
	s.AccessibilityMode = false
	s.RestrictMediaAccess = false
	s.RestrictCeleryExportForAnonymousUser = false

	s.LanguageCode = "en"
	s.Languages = []Language{{Code: "en", Name: "English"}}
	s.ShowLanguageSwitch = len(s.Languages) > 1

	return s
}

// projectLogging always writes the file handler to APP_ROOT/arches.log;
// ARCHES_LOG_PATH is published separately and does not move it.
func projectLogging(logPath string) LoggingConfig {
	return LoggingConfig{
		Version:                1,
		DisableExistingLoggers: false,
		Formatters: map[string]LogFormatter{
			"console": {Format: "%(asctime)s %(name)-12s %(levelname)-8s %(message)s"},
		},
		Handlers: map[string]LogHandler{
			"file": {
				Level:     "WARNING",
				Class:     "logging.FileHandler",
				Filename:  logPath,
				Formatter: "console",
			},
			"console": {
				Level:     "WARNING",
				Class:     "logging.StreamHandler",
				Formatter: "console",
			},
		},
		Loggers: map[string]LoggerConfig{
			"arches": {
				Handlers:  []string{"file", "console"},
				Level:     "WARNING",
				Propagate: true,
			},
		},
	}
}

// buildStaticfilesDirs lists the project's media before the framework's so
// project assets shadow framework assets of the same name.
func buildStaticfilesDirs(rootDir, appRoot string) []string {
	return []string{
		filepath.Join(appRoot, "media", "build"),
		filepath.Join(appRoot, "media"),
		filepath.Join(rootDir, "app", "media", "build"),
		filepath.Join(rootDir, "app", "media"),
	}
}

func brokerURL(user, pass string) string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(user, pass),
		Host:   "localhost",
	}
	return u.String()
}
