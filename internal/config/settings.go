package config

import "github.com/archesproject/arches-rdm-example-project/internal/storage"

// Settings is the final settings namespace handed to the hosting framework.
// YAML keys are the framework's setting names. Keys introduced by override
// files that have no field here are kept in Extra.
type Settings struct {
	AppName          string `yaml:"APP_NAME"`
	AppRoot          string `yaml:"APP_ROOT"`
	RootDir          string `yaml:"ROOT_DIR"`
	AppVersion       string `yaml:"APP_VERSION"`
	MinArchesVersion string `yaml:"MIN_ARCHES_VERSION"`
	MaxArchesVersion string `yaml:"MAX_ARCHES_VERSION"`
	SecretsMode      string `yaml:"SECRETS_MODE"`

	SecretKey               string   `yaml:"SECRET_KEY"`
	Debug                   bool     `yaml:"DEBUG"`
	AllowedHosts            []string `yaml:"ALLOWED_HOSTS"`
	RootURLConf             string   `yaml:"ROOT_URLCONF"`
	WSGIApplication         string   `yaml:"WSGI_APPLICATION"`
	InstalledApps           []string `yaml:"INSTALLED_APPS"`
	ArchesApplications      []string `yaml:"ARCHES_APPLICATIONS"`
	Middleware              []string `yaml:"MIDDLEWARE"`
	SessionCookieName       string   `yaml:"SESSION_COOKIE_NAME"`
	DataUploadMaxMemorySize int64    `yaml:"DATA_UPLOAD_MAX_MEMORY_SIZE"`
	PublicServerAddress     string   `yaml:"PUBLIC_SERVER_ADDRESS"`
	ForceScriptName         *string  `yaml:"FORCE_SCRIPT_NAME"`
	SilencedSystemChecks    []string `yaml:"SILENCED_SYSTEM_CHECKS"`
	TimeZone                string   `yaml:"TIME_ZONE"`

	Databases  map[string]Database `yaml:"DATABASES"`
	DBName     string              `yaml:"DB_NAME"`
	DBUser     string              `yaml:"DB_USER"`
	DBPassword string              `yaml:"DB_PASSWORD"`
	DBHost     string              `yaml:"DB_HOST"`
	DBPort     string              `yaml:"DB_PORT"`
	AWSRegion  string              `yaml:"AWS_REGION,omitempty"`

	ESHost     string `yaml:"ES_HOST"`
	ESPort     int    `yaml:"ES_PORT"`
	ESUser     string `yaml:"ES_USER"`
	ESPassword string `yaml:"ES_PASSWORD"`
	ESProtocol string `yaml:"ES_PROTOCOL"`

	ElasticsearchHosts             []ElasticsearchHost            `yaml:"ELASTICSEARCH_HOSTS"`
	ElasticsearchConnectionOptions ElasticsearchConnectionOptions `yaml:"ELASTICSEARCH_CONNECTION_OPTIONS"`
	ElasticsearchPrefix            string                         `yaml:"ELASTICSEARCH_PREFIX"`
	ElasticsearchCustomIndexes     []string                       `yaml:"ELASTICSEARCH_CUSTOM_INDEXES"`
	ESValidateCert                 bool                           `yaml:"ES_VALIDATE_CERT"`
	KibanaURL                      string                         `yaml:"KIBANA_URL"`
	KibanaConfigBasepath           string                         `yaml:"KIBANA_CONFIG_BASEPATH"`
	SearchResultLimit              int                            `yaml:"SEARCH_RESULT_LIMIT"`
	SearchItemsPerPage             int                            `yaml:"SEARCH_ITEMS_PER_PAGE"`
	SearchExportImmediateThreshold int                            `yaml:"SEARCH_EXPORT_IMMEDIATE_DOWNLOAD_THRESHOLD"`

	StorageBackend string                     `yaml:"STORAGE_BACKEND"`
	StorageOptions storage.Options            `yaml:"STORAGE_OPTIONS"`
	Storages       map[string]storage.Backend `yaml:"STORAGES"`

	StaticURL                    string                        `yaml:"STATIC_URL"`
	StaticRoot                   string                        `yaml:"STATIC_ROOT"`
	MediaURL                     string                        `yaml:"MEDIA_URL"`
	MediaRoot                    string                        `yaml:"MEDIA_ROOT"`
	StaticfilesDirs              []string                      `yaml:"STATICFILES_DIRS"`
	LocalePaths                  []string                      `yaml:"LOCALE_PATHS"`
	SystemSettingsLocalPath      string                        `yaml:"SYSTEM_SETTINGS_LOCAL_PATH"`
	WebpackLoader                map[string]WebpackLoaderEntry `yaml:"WEBPACK_LOADER"`
	WebpackDevelopmentServerPort int                           `yaml:"WEBPACK_DEVELOPMENT_SERVER_PORT"`
	ResourceImportLog            string                        `yaml:"RESOURCE_IMPORT_LOG"`
	ArchesLogPath                string                        `yaml:"ARCHES_LOG_PATH"`
	Logging                      LoggingConfig                 `yaml:"LOGGING"`

	DatatypeLocations        []string `yaml:"DATATYPE_LOCATIONS"`
	FunctionLocations        []string `yaml:"FUNCTION_LOCATIONS"`
	ETLModuleLocations       []string `yaml:"ETL_MODULE_LOCATIONS"`
	SearchComponentLocations []string `yaml:"SEARCH_COMPONENT_LOCATIONS"`

	LoadDefaultOntology                  bool               `yaml:"LOAD_DEFAULT_ONTOLOGY"`
	LoadPackageOntologies                bool               `yaml:"LOAD_PACKAGE_ONTOLOGIES"`
	FileTypeChecking                     bool               `yaml:"FILE_TYPE_CHECKING"`
	FileTypes                            []string           `yaml:"FILE_TYPES"`
	DefaultResourceImportUser            ResourceImportUser `yaml:"DEFAULT_RESOURCE_IMPORT_USER"`
	Caches                               map[string]Cache   `yaml:"CACHES"`
	HideEmptyNodesInReport               bool               `yaml:"HIDE_EMPTY_NODES_IN_REPORT"`
	BypassUniqueConstraintTileValidation bool               `yaml:"BYPASS_UNIQUE_CONSTRAINT_TILE_VALIDATION"`
	BypassRequiredValueTileValidation    bool               `yaml:"BYPASS_REQUIRED_VALUE_TILE_VALIDATION"`
	DateImportExportFormat               string             `yaml:"DATE_IMPORT_EXPORT_FORMAT"`
	ExportDataFieldsInCardOrder          bool               `yaml:"EXPORT_DATA_FIELDS_IN_CARD_ORDER"`
	CacheByUser                          map[string]int     `yaml:"CACHE_BY_USER"`
	TileCacheTimeout                     int                `yaml:"TILE_CACHE_TIMEOUT"`
	ClusterDistanceMax                   int                `yaml:"CLUSTER_DISTANCE_MAX"`
	GraphModelCacheTimeout               *int               `yaml:"GRAPH_MODEL_CACHE_TIMEOUT"`
	OAuthClientID                        string             `yaml:"OAUTH_CLIENT_ID"`
	AppTitle                             string             `yaml:"APP_TITLE"`
	CopyrightText                        string             `yaml:"COPYRIGHT_TEXT"`
	CopyrightYear                        string             `yaml:"COPYRIGHT_YEAR"`
	EnableCaptcha                        bool               `yaml:"ENABLE_CAPTCHA"`
	NoCaptcha                            bool               `yaml:"NOCAPTCHA"`
	EmailHostUser                        string             `yaml:"EMAIL_HOST_USER"`
	DefaultFromEmail                     string             `yaml:"DEFAULT_FROM_EMAIL"`

	CeleryBrokerURL              string              `yaml:"CELERY_BROKER_URL"`
	CeleryAcceptContent          []string            `yaml:"CELERY_ACCEPT_CONTENT"`
	CeleryResultBackend          string              `yaml:"CELERY_RESULT_BACKEND"`
	CeleryTaskSerializer         string              `yaml:"CELERY_TASK_SERIALIZER"`
	CelerySearchExportExpires    int                 `yaml:"CELERY_SEARCH_EXPORT_EXPIRES"`
	CelerySearchExportCheck      int                 `yaml:"CELERY_SEARCH_EXPORT_CHECK"`
	CeleryBeatSchedule           map[string]BeatTask `yaml:"CELERY_BEAT_SCHEDULE"`
	CeleryCheckOnlyInspectBroker bool                `yaml:"CELERY_CHECK_ONLY_INSPECT_BROKER"`

	CantaloupeDir                        string `yaml:"CANTALOUPE_DIR"`
	CantaloupeHTTPEndpoint               string `yaml:"CANTALOUPE_HTTP_ENDPOINT"`
	AccessibilityMode                    bool   `yaml:"ACCESSIBILITY_MODE"`
	RestrictMediaAccess                  bool   `yaml:"RESTRICT_MEDIA_ACCESS"`
	RestrictCeleryExportForAnonymousUser bool   `yaml:"RESTRICT_CELERY_EXPORT_FOR_ANONYMOUS_USER"`

	LanguageCode       string     `yaml:"LANGUAGE_CODE"`
	Languages          []Language `yaml:"LANGUAGES"`
	ShowLanguageSwitch bool       `yaml:"SHOW_LANGUAGE_SWITCH"`

	Extra map[string]any `yaml:",inline"`
}

// Database is one entry of DATABASES.
type Database struct {
	AtomicRequests  bool           `yaml:"ATOMIC_REQUESTS"`
	AutoCommit      bool           `yaml:"AUTOCOMMIT"`
	ConnMaxAge      int            `yaml:"CONN_MAX_AGE"`
	Engine          string         `yaml:"ENGINE"`
	Host            string         `yaml:"HOST"`
	Name            string         `yaml:"NAME"`
	Options         map[string]any `yaml:"OPTIONS"`
	Password        string         `yaml:"PASSWORD"`
	Port            string         `yaml:"PORT"`
	PostgisTemplate string         `yaml:"POSTGIS_TEMPLATE"`
	Test            DatabaseTest   `yaml:"TEST"`
	TimeZone        *string        `yaml:"TIME_ZONE"`
	User            string         `yaml:"USER"`
}

// DatabaseTest mirrors the TEST block of a database entry.
type DatabaseTest struct {
	Charset   *string `yaml:"CHARSET"`
	Collation *string `yaml:"COLLATION"`
	Mirror    *string `yaml:"MIRROR"`
	Name      *string `yaml:"NAME"`
}

// ElasticsearchHost is one entry of ELASTICSEARCH_HOSTS.
type ElasticsearchHost struct {
	Scheme string `yaml:"scheme"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
}

// ElasticsearchConnectionOptions is ELASTICSEARCH_CONNECTION_OPTIONS.
// BasicAuth holds user then password.
type ElasticsearchConnectionOptions struct {
	Timeout   int      `yaml:"timeout"`
	BasicAuth []string `yaml:"basic_auth"`
}

type WebpackLoaderEntry struct {
	StatsFile string `yaml:"STATS_FILE"`
}

type ResourceImportUser struct {
	Username string `yaml:"username"`
	UserID   int    `yaml:"userid"`
}

type Cache struct {
	Backend  string `yaml:"BACKEND"`
	Location string `yaml:"LOCATION,omitempty"`
}

// BeatTask is a periodic task entry; Schedule is in seconds.
type BeatTask struct {
	Task     string `yaml:"task"`
	Schedule int    `yaml:"schedule"`
	Args     []any  `yaml:"args,omitempty"`
}

// Language is a (code, display name) pair offered by the language switcher.
type Language struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// LoggingConfig follows the dictConfig layout used by the framework.
type LoggingConfig struct {
	Version                int                     `yaml:"version"`
	DisableExistingLoggers bool                    `yaml:"disable_existing_loggers"`
	Formatters             map[string]LogFormatter `yaml:"formatters"`
	Handlers               map[string]LogHandler   `yaml:"handlers"`
	Loggers                map[string]LoggerConfig `yaml:"loggers"`
}

type LogFormatter struct {
	Format string `yaml:"format"`
}

// LogHandler describes an output. Class is "logging.StreamHandler" or
// "logging.FileHandler"; Filename applies to the latter.
type LogHandler struct {
	Level     string `yaml:"level"`
	Class     string `yaml:"class"`
	Filename  string `yaml:"filename,omitempty"`
	Formatter string `yaml:"formatter"`
}

type LoggerConfig struct {
	Handlers  []string `yaml:"handlers"`
	Level     string   `yaml:"level"`
	Propagate bool     `yaml:"propagate"`
}
