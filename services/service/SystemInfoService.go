// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
	"github.com/Netcracker/qubership-apihub-capture-manager/utils"
	"github.com/Netcracker/qubership-apihub-capture-manager/view"
	"github.com/netcracker/qubership-core-lib-go/v3/configloader"
	log "github.com/sirupsen/logrus"
)

const (
	ListenAddress        = "LISTEN_ADDRESS"
	OriginAllowed        = "ORIGIN_ALLOWED"
	GatewayUrl           = "GATEWAY_URL"
	GatewayToken         = "GATEWAY_TOKEN"
	GatewayTimeout       = "GATEWAY_TIMEOUT"
	GatewayInsecure      = "GATEWAY_INSECURE"
	GatewayRetryCount    = "GATEWAY_RETRY_COUNT"
	PollInterval         = "POLL_INTERVAL"
	ProgressInterval     = "PROGRESS_INTERVAL"
	InventoryTTL         = "INVENTORY_TTL"
	JournalDirectory     = "JOURNAL_DIRECTORY"
	MinioAccessKeyId     = "STORAGE_SERVER_USERNAME"
	MinioSecretAccessKey = "STORAGE_SERVER_PASSWORD"
	MinioCrt             = "STORAGE_SERVER_CRT"
	MinioEndpoint        = "STORAGE_SERVER_URL"
	MinioBucketName      = "STORAGE_SERVER_BUCKET_NAME"
	MinioStorageActive   = "MINIO_STORAGE_ACTIVE"
	MinioCompressUploads = "STORAGE_COMPRESS_UPLOADS"
	APIkey               = "MANAGER_API_KEY"
	ProductionMode       = "PRODUCTION_MODE"
	EndPointProto        = "ENDPOINT_PROTOCOL" // http:// or https://
	EndPointPort         = "ENDPOINT_PORT"     // 80,8080,...
	EndPointHost         = "ENDPOINT_HOST"
	CfgDefaultPort       = 8080 // default port number
	DefaultListenAddress = ":8080"
	DefaultEndpointProto = "http://"
)

type SystemInfoService interface {
	Init() error
	GetListenAddress() string
	GetOriginAllowed() string
	GetString(name string) string
	GetInt64(name string, defVal int64) int64
	GetBool(name string) bool
	GetDuration(name string, defVal time.Duration) time.Duration
	GetMinioCredentials() (*entities.MinioStorageCreds, error)
	GetInstanceId() string
	GetGatewayConfig() entities.GatewayConfig
	GetManagerConfig() entities.ManagerConfig
	GetApiKey() string
	GetCaptureControllerConfig() entities.CaptureControllerConfig
}

// NewSystemInfoService
// creates an interface instance; environment wins over config.yaml
func NewSystemInfoService() (SystemInfoService, error) {
	return newSystemInfoService(lookupEnvOrConfig)
}

func newSystemInfoService(lookup func(name string) string) (SystemInfoService, error) {
	s := &systemInfoServiceImpl{
		systemInfoMap: make(map[string]interface{}),
		instanceId:    utils.MakeUniqueId(),
		lookup:        lookup,
	}
	log.Printf("instance ID:%s", s.instanceId)
	if err := s.Init(); err != nil {
		log.Error("Failed to read system info: " + err.Error())
		return nil, err
	}
	return s, nil
}

// systemInfoServiceImpl an interface implementation
type systemInfoServiceImpl struct {
	systemInfoMap map[string]interface{} // parameters
	instanceId    string
	lookup        func(name string) string
}

// lookupEnvOrConfig
// GATEWAY_URL is looked up in the environment, then as gateway.url in config.yaml
func lookupEnvOrConfig(name string) string {
	if v, found := os.LookupEnv(name); found {
		return v
	}
	k := configloader.GetKoanf()
	if k == nil {
		return view.EmptyString
	}
	key := strings.ReplaceAll(strings.ToLower(name), "_", ".")
	if k.Exists(key) {
		return k.String(key)
	}
	return view.EmptyString
}

// extractBoolDef
// extracts bool value from string with default value
func extractBoolDef(v string, defVal bool) bool {
	if v == view.EmptyString {
		return defVal
	}
	val, err := strconv.ParseBool(v)
	if err != nil {
		return defVal
	}
	return val
}

// extractBool
// extracts bool value from string. error, empty or absent value means 'false'
func extractBool(v string) bool {
	return extractBoolDef(v, false)
}

// extractDuration
// accepts Go durations ("3s", "1m") or a plain number of seconds
func extractDuration(name, v string) (time.Duration, error) {
	if v == view.EmptyString {
		return 0, nil
	}
	if d, err := time.ParseDuration(v); err == nil {
		if d < 0 {
			return 0, fmt.Errorf("negative value for %s => '%s' is not allowed", name, v)
		}
		return d, nil
	}
	seconds, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("improper duration format for %s => '%s' (%v)", name, v, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative value for %s => '%s' is not allowed", name, v)
	}
	return time.Duration(seconds) * time.Second, nil
}

// Init
// loads configuration from the environment
func (g systemInfoServiceImpl) Init() error {
	// production mode (enable by default)
	g.systemInfoMap[ProductionMode] = extractBoolDef(g.lookup(ProductionMode), true)
	g.systemInfoMap[OriginAllowed] = g.lookup(OriginAllowed)

	// remote controller
	gatewayUrl := strings.TrimSpace(g.lookup(GatewayUrl))
	if gatewayUrl == view.EmptyString {
		return fmt.Errorf("unable to continue without controller address. Please set value for %s", GatewayUrl)
	}
	g.systemInfoMap[GatewayUrl] = gatewayUrl
	g.systemInfoMap[GatewayToken] = g.lookup(GatewayToken)
	if g.GetString(GatewayToken) == view.EmptyString {
		log.Warnf("%s is empty, controller requests are not authenticated", GatewayToken)
	}
	g.systemInfoMap[GatewayInsecure] = extractBool(g.lookup(GatewayInsecure))
	if retries := g.lookup(GatewayRetryCount); retries != view.EmptyString {
		n, err := strconv.ParseInt(retries, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("improper number format for %s => '%s'", GatewayRetryCount, retries)
		}
		g.systemInfoMap[GatewayRetryCount] = n
	}
	// timers
	for _, name := range []string{GatewayTimeout, PollInterval, ProgressInterval, InventoryTTL} {
		d, err := extractDuration(name, g.lookup(name))
		if err != nil {
			return err
		}
		if d > 0 {
			g.systemInfoMap[name] = d
		}
	}
	journalDir := g.lookup(JournalDirectory)
	if journalDir == view.EmptyString {
		log.Warnf("%s is empty, capture sessions are not journaled", JournalDirectory)
	}
	g.systemInfoMap[JournalDirectory] = journalDir
	// S3/Minio
	g.systemInfoMap[MinioAccessKeyId] = g.lookup(MinioAccessKeyId)
	g.systemInfoMap[MinioSecretAccessKey] = g.lookup(MinioSecretAccessKey)
	g.systemInfoMap[MinioCrt] = g.lookup(MinioCrt)
	g.systemInfoMap[MinioEndpoint] = g.lookup(MinioEndpoint)
	g.systemInfoMap[MinioBucketName] = g.lookup(MinioBucketName)
	g.systemInfoMap[MinioStorageActive] = extractBool(g.lookup(MinioStorageActive))
	g.systemInfoMap[MinioCompressUploads] = extractBoolDef(g.lookup(MinioCompressUploads), true)
	if g.GetBool(MinioStorageActive) && (g.GetString(MinioEndpoint) == view.EmptyString || g.GetString(MinioBucketName) == view.EmptyString) {
		return fmt.Errorf("%s requires %s and %s", MinioStorageActive, MinioEndpoint, MinioBucketName)
	}

	apiKey := g.lookup(APIkey)
	if apiKey == view.EmptyString {
		if g.GetBool(ProductionMode) {
			return fmt.Errorf("unable to load API key. That will be unsafe in production mode")
		}
		log.Warnln("API key empty or not present")
	} else {
		g.systemInfoMap[APIkey] = apiKey
	}
	// ListenAddress a.k.a. endpoint
	sla := g.lookup(ListenAddress)
	if sla == view.EmptyString {
		sla = DefaultListenAddress
		log.Warnf("%s is empty, using %s", ListenAddress, sla)
	}
	const (
		reIndexProto = 2
		reIndexHost  = 3
		reIndexPort  = 5
	)
	re := regexp.MustCompile(`^((http://|https://)?([^:]+))?(:(\d+))?$`)
	matches := re.FindStringSubmatch(sla)
	if matches == nil {
		return fmt.Errorf("invalid listen address: %s", sla)
	}
	g.systemInfoMap[ListenAddress] = sla
	if len(matches[reIndexProto]) > 0 {
		g.systemInfoMap[EndPointProto] = matches[reIndexProto]
	} else {
		g.systemInfoMap[EndPointProto] = DefaultEndpointProto
	}
	g.systemInfoMap[EndPointHost] = matches[reIndexHost]
	nPort, err := strconv.ParseInt(matches[reIndexPort], 10, 64)
	if err != nil || nPort <= 0 {
		nPort = CfgDefaultPort
		log.Warnf("improper value '%s' passed as port number. using default port: %d", matches[reIndexPort], nPort)
	}
	g.systemInfoMap[EndPointPort] = nPort
	return nil
}

// GetListenAddress
// returns string value for ListenAddress
func (g systemInfoServiceImpl) GetListenAddress() string {
	return g.GetString(ListenAddress)
}

// GetOriginAllowed
// returns string value for OriginAllowed
func (g systemInfoServiceImpl) GetOriginAllowed() string {
	return g.GetString(OriginAllowed)
}

// GetString
// returns string by name or empty string when not found
func (g systemInfoServiceImpl) GetString(name string) string {
	if v, ok := g.systemInfoMap[name].(string); ok {
		return v
	}
	return view.EmptyString
}

// GetInt64
// returns int64 by name or the default when not found
func (g systemInfoServiceImpl) GetInt64(name string, defVal int64) int64 {
	if v, ok := g.systemInfoMap[name].(int64); ok {
		return v
	}
	return defVal
}

// GetBool
// get bool value from configuration
func (g systemInfoServiceImpl) GetBool(name string) bool {
	if v, ok := g.systemInfoMap[name].(bool); ok {
		return v
	}
	return false
}

func (g systemInfoServiceImpl) GetDuration(name string, defVal time.Duration) time.Duration {
	if v, ok := g.systemInfoMap[name].(time.Duration); ok {
		return v
	}
	return defVal
}

// GetMinioCredentials
// constructs MINIO credentials from configuration
func (g systemInfoServiceImpl) GetMinioCredentials() (*entities.MinioStorageCreds, error) {
	return &entities.MinioStorageCreds{
		BucketName:           g.GetString(MinioBucketName),
		IsActive:             g.GetBool(MinioStorageActive),
		Endpoint:             g.GetString(MinioEndpoint),
		Crt:                  g.GetString(MinioCrt),
		AccessKeyId:          g.GetString(MinioAccessKeyId),
		SecretAccessKey:      g.GetString(MinioSecretAccessKey),
		CompressBeforeUpload: g.GetBool(MinioCompressUploads),
	}, nil
}

// GetInstanceId
// returns unique instance Id, generated at start
func (g systemInfoServiceImpl) GetInstanceId() string {
	return g.instanceId
}

func (g systemInfoServiceImpl) GetGatewayConfig() entities.GatewayConfig {
	return entities.GatewayConfig{
		BaseUrl:    g.GetString(GatewayUrl),
		Token:      g.GetString(GatewayToken),
		Timeout:    g.GetDuration(GatewayTimeout, view.DefaultGatewayTimeout),
		Insecure:   g.GetBool(GatewayInsecure),
		RetryCount: int(g.GetInt64(GatewayRetryCount, 0)),
	}
}

func (g systemInfoServiceImpl) GetManagerConfig() entities.ManagerConfig {
	cfg := entities.ManagerConfig{
		PollInterval:     g.GetDuration(PollInterval, view.DefaultPollInterval),
		ProgressInterval: g.GetDuration(ProgressInterval, view.DefaultProgressInterval),
		InventoryTTL:     g.GetDuration(InventoryTTL, view.DefaultInventoryTTL),
		JournalDirectory: g.GetString(JournalDirectory),
	}
	log.Printf("Instance Id      :%s", g.instanceId)
	log.Printf("Poll interval    :%v", cfg.PollInterval)
	log.Printf("Progress interval:%v", cfg.ProgressInterval)
	return cfg
}

func (g systemInfoServiceImpl) GetApiKey() string {
	return g.GetString(APIkey)
}

func (g systemInfoServiceImpl) GetCaptureControllerConfig() entities.CaptureControllerConfig {
	return entities.CaptureControllerConfig{
		APIkey:         g.GetApiKey(),
		ProductionMode: g.GetBool(ProductionMode),
	}
}
