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

package exception

const EmptyParameter = "8"
const EmptyParameterMsg = "Parameter $param should not be empty"

const InvalidParameter = "9"
const InvalidParameterMsg = "Parameter $param has invalid value $value"

const BadRequestBody = "10"
const BadRequestBodyMsg = "Failed to decode body"

const ApiKeyNotFound = "83"
const ApiKeyNotFoundMsg = "Api key for user $user and integration $integration not found"

// InvalidCaptureConfig capture session codes and messages
const InvalidCaptureConfig = "20000"
const InvalidCaptureConfigMsg = "capture configuration is not valid"
const UnableToStartCapture = "20001"
const UnableToStartCaptureMsg = "unable to start capture"
const UnableToStopCapture = "20002"
const UnableToStopCaptureMsg = "unable to stop capture"
const SessionNotFound = "20003"
const SessionNotFoundMsg = "capture session $id not found"
const StopInProgress = "20005"
const StopInProgressMsg = "stop of capture session $id is already in progress"

// UnableToListFiles capture file codes and messages
const UnableToListFiles = "20100"
const UnableToListFilesMsg = "unable to list capture files"
const UnableToDownloadFile = "20101"
const UnableToDownloadFileMsg = "unable to download capture file"
const UnableToDeleteFile = "20102"
const UnableToDeleteFileMsg = "unable to delete capture file"
const UnableToListAccessPoints = "20103"
const UnableToListAccessPointsMsg = "unable to list access points"
