package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/sirupsen/logrus"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

func SendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Set("Content-Type", "application/json")
	return w.Write(payload)
}

func sendJSONOrLog(w http.ResponseWriter, log logrus.FieldLogger, v any) {
	if _, err := SendJSON(w, v); err != nil {
		log.WithError(err).WithField("response", v).Error("unable to send response")
	}
}

// sendError writes status with a JSON {"error": ...} body.
func sendError(w http.ResponseWriter, log logrus.FieldLogger, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(wrapError(err)); encErr != nil {
		log.WithError(encErr).Error("unable to send error")
	}
}

// internalError logs err with msg and answers 500 without leaking details.
func internalError(w http.ResponseWriter, log logrus.FieldLogger, msg string, err error) {
	log.WithError(err).Error(msg)
	w.WriteHeader(http.StatusInternalServerError)
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}
