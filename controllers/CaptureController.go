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

package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/Netcracker/qubership-apihub-capture-manager/entities"
	"github.com/Netcracker/qubership-apihub-capture-manager/exception"
	"github.com/Netcracker/qubership-apihub-capture-manager/services/manager"
	"github.com/Netcracker/qubership-apihub-capture-manager/view"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Service
// an interface to controller
type Service interface {
	OnValidate(w http.ResponseWriter, r *http.Request)
	OnEstimate(w http.ResponseWriter, r *http.Request)
	OnStart(w http.ResponseWriter, r *http.Request)
	OnSessions(w http.ResponseWriter, r *http.Request)
	OnStop(w http.ResponseWriter, r *http.Request)
	OnStopAll(w http.ResponseWriter, r *http.Request)
	OnFiles(w http.ResponseWriter, r *http.Request)
	OnDownload(w http.ResponseWriter, r *http.Request)
	OnDelete(w http.ResponseWriter, r *http.Request)
	OnAccessPoints(w http.ResponseWriter, r *http.Request)
	OnVisibility(w http.ResponseWriter, r *http.Request)
	OnWebSocket(w http.ResponseWriter, r *http.Request)
	OnStatus(w http.ResponseWriter, r *http.Request)
}

type webService struct {
	entities.CaptureControllerConfig
	manager manager.CaptureManager
}

// constants
const (
	requestBodyDeferError = "unable to defer request body. error: %v"
	HttpContentType       = "Content-Type"
	invalidApiKey         = "API key not match"
	emptyApiKey           = "empty API key not allowed in production mode"
	pcapContentType       = "application/vnd.tcpdump.pcap"
	apiKeyQueryParam      = "api-key" // browsers cannot set headers on a websocket upgrade
)

// validateResponse
// local validation outcome together with the size estimate
type validateResponse struct {
	entities.ValidationResult
	Estimate entities.SizeEstimate `json:"estimate"`
}

// NewWebService
// creates a new web interface instance
func NewWebService(m manager.CaptureManager, config entities.CaptureControllerConfig) Service {
	return &webService{CaptureControllerConfig: config, manager: m}
}

// NewRouter
// ids are opaque and may carry '/', so paths are matched encoded and vars decoded by pathVar
func NewRouter(ws Service) *mux.Router {
	r := mux.NewRouter()
	r.SkipClean(true)
	r.UseEncodedPath()
	RegisterRoutes(r, ws)
	return r
}

// RegisterRoutes
// binds dashboard endpoints and probes
func RegisterRoutes(r *mux.Router, ws Service) {
	r.HandleFunc(view.ApiValidatePath, ws.OnValidate).Methods(http.MethodPost)
	r.HandleFunc(view.ApiEstimatePath, ws.OnEstimate).Methods(http.MethodGet)
	r.HandleFunc(view.ApiStopAllPath, ws.OnStopAll).Methods(http.MethodPost)
	r.HandleFunc(view.ApiCaptureStopPath, ws.OnStop).Methods(http.MethodPost)
	r.HandleFunc(view.ApiCapturesPath, ws.OnStart).Methods(http.MethodPost)
	r.HandleFunc(view.ApiCapturesPath, ws.OnSessions).Methods(http.MethodGet)
	r.HandleFunc(view.ApiFilesPath, ws.OnFiles).Methods(http.MethodGet)
	r.HandleFunc(view.ApiFilePath, ws.OnDownload).Methods(http.MethodGet)
	r.HandleFunc(view.ApiFilePath, ws.OnDelete).Methods(http.MethodDelete)
	r.HandleFunc(view.ApiAccessPointsPath, ws.OnAccessPoints).Methods(http.MethodGet)
	r.HandleFunc(view.ApiVisibilityPath, ws.OnVisibility).Methods(http.MethodPost)
	r.HandleFunc(view.ApiWebSocketPath, ws.OnWebSocket).Methods(http.MethodGet)
	// set TTL reactions
	r.HandleFunc("/live", ws.OnStatus).Methods(http.MethodGet)
	r.HandleFunc("/ready", ws.OnStatus).Methods(http.MethodGet)
	r.HandleFunc("/startup", ws.OnStatus).Methods(http.MethodGet)
}

func RespondWithJson(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set(HttpContentType, "application/json")
	w.WriteHeader(code)
	write, err := w.Write(response)
	if err != nil {
		log.Debugf("%d response bytes written with error: %v", write, err)
	}
}

func RespondWithCustomError(w http.ResponseWriter, err *exception.CustomError) {
	log.Debugf("Request failed. Code = %d. Message = %s. Params: %v. Debug: %s", err.Status, err.Message, err.Params, err.Debug)
	RespondWithJson(w, err.Status, err)
}

// respondWithError
// maps manager errors to HTTP, code and message describe the failed operation
func respondWithError(w http.ResponseWriter, err error, code string, message string, params map[string]interface{}) {
	var validationError *exception.ValidationError
	var remoteError *exception.RemoteRequestError
	switch {
	case errors.As(err, &validationError):
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.InvalidCaptureConfig,
			Message: validationError.Message,
			Debug:   exception.InvalidCaptureConfigMsg,
		})
	case errors.Is(err, exception.ErrSessionNotFound):
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusNotFound,
			Code:    exception.SessionNotFound,
			Message: exception.SessionNotFoundMsg,
			Params:  params,
		})
	case errors.Is(err, exception.ErrStopInProgress):
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusConflict,
			Code:    exception.StopInProgress,
			Message: exception.StopInProgressMsg,
			Params:  params,
		})
	case errors.As(err, &remoteError):
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadGateway,
			Code:    code,
			Message: remoteError.Message,
			Params:  params,
			Debug:   message,
		})
	default:
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusInternalServerError,
			Code:    code,
			Message: message,
			Params:  params,
			Debug:   err.Error(),
		})
	}
}

// pathVar
// decodes a route variable of an encoded path router, responds 400 when it is not valid escaping
func pathVar(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := mux.Vars(r)[name]
	value, err := url.PathUnescape(raw)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.InvalidParameter,
			Message: exception.InvalidParameterMsg,
			Params:  map[string]interface{}{"param": name, "value": raw},
			Debug:   err.Error(),
		})
		return view.EmptyString, false
	}
	return value, true
}

// OnValidate
// validates a configuration and estimates its size, never calls the controller
func (ws *webService) OnValidate(w http.ResponseWriter, r *http.Request) {
	cfg, ok := ws.readCaptureConfig(w, r)
	if !ok {
		return
	}
	res, est := ws.manager.Validate(cfg)
	RespondWithJson(w, http.StatusOK, validateResponse{ValidationResult: res, Estimate: est})
}

// OnEstimate
// duration and truncation come as query parameters, rate is optional
func (ws *webService) OnEstimate(w http.ResponseWriter, r *http.Request) {
	if !ws.checkApiKey(w, r) {
		return
	}
	query := r.URL.Query()
	values := map[string]int{"duration": 0, "truncation": 0, "rate": 0}
	for name := range values {
		raw := query.Get(name)
		if raw == view.EmptyString {
			if name == "duration" {
				RespondWithCustomError(w, &exception.CustomError{
					Status:  http.StatusBadRequest,
					Code:    exception.EmptyParameter,
					Message: exception.EmptyParameterMsg,
					Params:  map[string]interface{}{"param": name},
				})
				return
			}
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondWithCustomError(w, &exception.CustomError{
				Status:  http.StatusBadRequest,
				Code:    exception.InvalidParameter,
				Message: exception.InvalidParameterMsg,
				Params:  map[string]interface{}{"param": name, "value": raw},
			})
			return
		}
		values[name] = n
	}
	RespondWithJson(w, http.StatusOK, ws.manager.Estimate(values["duration"], values["truncation"], values["rate"]))
}

// OnStart
// validates and starts a capture
func (ws *webService) OnStart(w http.ResponseWriter, r *http.Request) {
	cfg, ok := ws.readCaptureConfig(w, r)
	if !ok {
		return
	}
	res, err := ws.manager.Start(r.Context(), cfg)
	if err != nil {
		respondWithError(w, err, exception.UnableToStartCapture, exception.UnableToStartCaptureMsg, nil)
		return
	}
	RespondWithJson(w, http.StatusCreated, res)
}

func (ws *webService) OnSessions(w http.ResponseWriter, r *http.Request) {
	if !ws.checkApiKey(w, r) {
		return
	}
	RespondWithJson(w, http.StatusOK, ws.manager.Sessions())
}

// OnStop
// stops one capture session
func (ws *webService) OnStop(w http.ResponseWriter, r *http.Request) {
	if !ws.checkApiKey(w, r) {
		return
	}
	id, ok := pathVar(w, r, "id")
	if !ok {
		return
	}
	err := ws.manager.StopOne(r.Context(), id)
	if err != nil {
		respondWithError(w, err, exception.UnableToStopCapture, exception.UnableToStopCaptureMsg, map[string]interface{}{"id": id})
		return
	}
	RespondWithJson(w, http.StatusAccepted, view.CallResult{Status: view.RequestStatusStopped, Id: id})
}

func (ws *webService) OnStopAll(w http.ResponseWriter, r *http.Request) {
	if !ws.checkApiKey(w, r) {
		return
	}
	if err := ws.manager.StopAll(r.Context()); err != nil {
		respondWithError(w, err, exception.UnableToStopCapture, exception.UnableToStopCaptureMsg, nil)
		return
	}
	RespondWithJson(w, http.StatusAccepted, view.CallResult{Status: view.RequestStatusStopped})
}

func (ws *webService) OnFiles(w http.ResponseWriter, r *http.Request) {
	if !ws.checkApiKey(w, r) {
		return
	}
	files, err := ws.manager.ListFiles(r.Context())
	if err != nil {
		respondWithError(w, err, exception.UnableToListFiles, exception.UnableToListFilesMsg, nil)
		return
	}
	RespondWithJson(w, http.StatusOK, files)
}

// OnDownload
// streams the capture file as an attachment
func (ws *webService) OnDownload(w http.ResponseWriter, r *http.Request) {
	if !ws.checkApiKey(w, r) {
		return
	}
	id, ok := pathVar(w, r, "id")
	if !ok {
		return
	}
	filename := r.URL.Query().Get("filename")
	data, err := ws.manager.Download(r.Context(), id, filename)
	if err != nil {
		respondWithError(w, err, exception.UnableToDownloadFile, exception.UnableToDownloadFileMsg, map[string]interface{}{"id": id})
		return
	}
	if filename == view.EmptyString {
		filename = id + ".pcap"
	}
	w.Header().Set(HttpContentType, pcapContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(data); err != nil {
		log.Debugf("capture file %s written with error: %v", id, err)
	}
}

func (ws *webService) OnDelete(w http.ResponseWriter, r *http.Request) {
	if !ws.checkApiKey(w, r) {
		return
	}
	id, ok := pathVar(w, r, "id")
	if !ok {
		return
	}
	if err := ws.manager.Delete(r.Context(), id, r.URL.Query().Get("filename")); err != nil {
		respondWithError(w, err, exception.UnableToDeleteFile, exception.UnableToDeleteFileMsg, map[string]interface{}{"id": id})
		return
	}
	RespondWithJson(w, http.StatusOK, view.CallResult{Status: view.RequestStatusDeleted, Id: id})
}

func (ws *webService) OnAccessPoints(w http.ResponseWriter, r *http.Request) {
	if !ws.checkApiKey(w, r) {
		return
	}
	aps, err := ws.manager.AccessPoints(r.Context())
	if err != nil {
		respondWithError(w, err, exception.UnableToListAccessPoints, exception.UnableToListAccessPointsMsg, nil)
		return
	}
	RespondWithJson(w, http.StatusOK, aps)
}

// OnVisibility
// visibility for pages that do not keep a websocket open
func (ws *webService) OnVisibility(w http.ResponseWriter, r *http.Request) {
	body, err := ws.checkAndGetBody(w, r)
	if err != nil {
		return
	}
	var payload view.VisibilityPayload
	if err = json.Unmarshal(body, &payload); err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error(),
		})
		return
	}
	ws.manager.SetVisible(payload.Visible)
	w.WriteHeader(http.StatusNoContent)
}

func (ws *webService) OnWebSocket(w http.ResponseWriter, r *http.Request) {
	if !ws.checkApiKey(w, r) {
		return
	}
	ws.manager.ServeWS(w, r)
}

// OnStatus
// reports status on TTL requests
func (ws *webService) OnStatus(w http.ResponseWriter, _ *http.Request) {
	RespondWithJson(w, http.StatusOK, "") // always respond OK to calm the watchdogs
}

func (ws *webService) readCaptureConfig(w http.ResponseWriter, r *http.Request) (entities.CaptureConfig, bool) {
	var cfg entities.CaptureConfig
	body, err := ws.checkAndGetBody(w, r)
	if err != nil {
		return cfg, false
	}
	if err = json.Unmarshal(body, &cfg); err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error(),
		})
		return cfg, false
	}
	return cfg, true
}

// checkApiKey
// the header wins, the query parameter serves websocket upgrades
func (ws *webService) checkApiKey(w http.ResponseWriter, r *http.Request) bool {
	if ws.APIkey != view.EmptyString {
		apiKey := r.Header.Get(view.ApiKeyHeader)
		if apiKey == view.EmptyString {
			apiKey = r.URL.Query().Get(apiKeyQueryParam)
		}
		if apiKey != ws.APIkey {
			RespondWithCustomError(w, &exception.CustomError{
				Status:  http.StatusUnauthorized,
				Code:    exception.ApiKeyNotFound,
				Message: exception.ApiKeyNotFoundMsg,
				Debug:   invalidApiKey,
			})
			return false
		}
		return true
	}
	if ws.ProductionMode {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusUnauthorized,
			Code:    exception.EmptyParameter,
			Message: exception.EmptyParameterMsg,
			Debug:   emptyApiKey,
		})
		return false
	}
	return true
}

// checkAndGetBody
// checks API key and reads body contents
func (ws *webService) checkAndGetBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if !ws.checkApiKey(w, r) {
		return nil, fmt.Errorf(invalidApiKey)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			log.Debugf(requestBodyDeferError, err)
		}
	}(r.Body)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.BadRequestBody,
			Message: exception.BadRequestBodyMsg,
			Debug:   err.Error(),
		})
		return nil, err
	}
	return body, nil
}
