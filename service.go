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

package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/Netcracker/qubership-apihub-capture-manager/controllers"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/cloud_storage"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/gateway"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/manager"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/notifier"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/service"
	"github.com/Netcracker/qubership-apihub-capture-manager/utils"
	"github.com/Netcracker/qubership-apihub-capture-manager/view"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/netcracker/qubership-core-lib-go/v3/configloader"
	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	restartServiceInterval = 10 * time.Second
	shutdownTimeout        = 15 * time.Second
)

func makeServer(systemInfoService service.SystemInfoService, r *mux.Router) *http.Server {
	listenAddr := systemInfoService.GetListenAddress()

	log.Infof("Listen addr = %s", listenAddr)

	var corsOptions []handlers.CORSOption

	corsOptions = append(corsOptions,
		handlers.AllowedHeaders([]string{
			"Connection",
			"Accept-Encoding",
			"Content-Encoding",
			"X-Requested-With",
			controllers.HttpContentType,
			view.ApiKeyHeader,
			"Authorization"}))

	allowedOrigin := systemInfoService.GetOriginAllowed()
	if allowedOrigin != "" {
		corsOptions = append(corsOptions, handlers.AllowedOrigins([]string{allowedOrigin}))
	}
	corsOptions = append(corsOptions, handlers.AllowedMethods([]string{http.MethodPost, http.MethodGet, http.MethodDelete}))

	return &http.Server{
		Handler:      handlers.CompressHandler(handlers.CORS(corsOptions...)(r)),
		Addr:         listenAddr,
		WriteTimeout: 300 * time.Second,
		ReadTimeout:  30 * time.Second,
	}
}

// init
// initialises logging
func init() {
	basePath := os.Getenv("BASE_PATH")
	if basePath == "" {
		basePath = "."
	}
	mw := io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename: path.Join(basePath, "logs", "capture_manager.log"),
		MaxSize:  10, // megabytes
	})
	log.SetFormatter(&prefixed.TextFormatter{
		DisableColors:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
	})
	logLevel, err := log.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = log.InfoLevel
	}
	log.SetLevel(logLevel)
	log.SetOutput(mw)
}

// init
// initialises paas configuration from environment
func init() {
	sourceParams := configloader.YamlPropertySourceParams{ConfigFilePath: "config.yaml"}
	configloader.Init(configloader.BasePropertySources(sourceParams)...)
	piece := configloader.GetKoanf()
	if piece != nil {
		err := piece.Set("paas.platform", os.Getenv("PAAS_PLATFORM"))
		if err != nil {
			log.Error(err)
		} else {
			err = piece.Set("paas.version", os.Getenv("PAAS_VERSION"))
			if err != nil {
				log.Error(err)
			}
		}
	}
}

func main() {
	logLevel := view.EmptyString
	flag.StringVar(&logLevel, "log-level", view.EmptyString, "A logging level: (trace, debug, info, warning, error, fatal, panic)")
	flag.Parse()
	if logLevel != view.EmptyString {
		if level, err := log.ParseLevel(logLevel); err == nil {
			log.SetLevel(level)
		} else {
			log.Warnf("unknown log level '%s' ignored", logLevel)
		}
	}
	systemInfoService, mandatoryServiceError := service.NewSystemInfoService()
	if mandatoryServiceError != nil {
		log.Fatalf("unable to prepare service configuration '%v'", mandatoryServiceError)
	}
	gw, err := gateway.NewGateway(systemInfoService.GetGatewayConfig())
	if err != nil {
		log.Fatalf("unable to create controller gateway: %v", err)
	}
	s3Config, err := systemInfoService.GetMinioCredentials()
	if err != nil {
		log.Fatalln(err)
	}
	archive := cloud_storage.NewCloudStorage(*s3Config)
	hub := notifier.NewHub(systemInfoService.GetOriginAllowed())
	captureManager, err := manager.NewCaptureManager(gw, systemInfoService.GetManagerConfig(), hub, archive)
	if err != nil {
		log.Fatalf("unable to create capture manager: %v", err)
	}
	defer captureManager.Close()

	r := controllers.NewRouter(controllers.NewWebService(captureManager, systemInfoService.GetCaptureControllerConfig()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	serve(ctx, func() *http.Server { return makeServer(systemInfoService, r) })
	log.Info("capture manager stopped")
}

// serve
// runs the HTTP server until ctx is done, restarting it with a growing pause when it fails
func serve(ctx context.Context, newServer func() *http.Server) {
	restartPause := restartServiceInterval
	for {
		srv := newServer()
		failureReportChannel := make(chan error, 1)
		utils.SafeAsync(func() {
			failureReportChannel <- srv.ListenAndServe()
		})
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Errorf("server shutdown failed: %v", err)
			}
			cancel()
			return
		case err := <-failureReportChannel:
			if errors.Is(err, http.ErrServerClosed) {
				return
			}
			log.Errorf("controller failed unexpectedly: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(restartPause):
			restartPause *= 2 // increase interval
		}
	}
}
