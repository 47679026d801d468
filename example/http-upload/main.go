package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/mazrean/formdata"
	httpform "github.com/mazrean/formdata/http"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/blake3"
)

type uploadedFile struct {
	Field       string   `json:"field"`
	FileName    string   `json:"filename"`
	ContentType string   `json:"contentType"`
	Size        int64    `json:"size"`
	BLAKE3      string   `json:"blake3"`
	Paths       []string `json:"paths"`
}

type uploadResult struct {
	Operations json.RawMessage `json:"operations"`
	Files      []uploadedFile  `json:"files"`
	Length     int64           `json:"length"`
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	limitsPath := flag.String("limits", "", "TOML file with decoder limits")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	limits := formdata.DefaultLimits()
	if *limitsPath != "" {
		var err error
		limits, err = formdata.LoadLimits(*limitsPath)
		if err != nil {
			logger.WithError(err).Fatal("failed to load limits")
		}
	}
	logger.WithFields(logrus.Fields{
		"max_buf_size":  limits.MaxBufSize.String(),
		"max_file_size": limits.MaxFileSize.String(),
		"max_parts":     limits.MaxParts,
	}).Info("limits loaded")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
		log := logger.WithField("remote", r.RemoteAddr)

		dec, err := httpform.NewDecoder(r, formdata.WithLimits(limits), formdata.WithLogger(log))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer dec.Close()

		res, err := upload(dec)
		if err != nil {
			log.WithError(err).Warn("upload failed")
			http.Error(w, err.Error(), statusOf(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		err = json.NewEncoder(w).Encode(res)
		if err != nil {
			log.WithError(err).Error("failed to write response")
		}
	})

	logger.WithField("addr", *addr).Info("listening")
	err := http.ListenAndServe(*addr, mux)
	if err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

// upload reads a GraphQL multipart request: "operations" and "map" first,
// then one part per file named after its key in "map".
func upload(dec *formdata.Decoder) (*uploadResult, error) {
	var (
		res     uploadResult
		fileMap map[string][]string
	)
	for field, err := range dec.Fields() {
		if err != nil {
			return nil, fmt.Errorf("failed to decode form: %w", err)
		}

		switch field.Name() {
		case "operations":
			b, err := field.Bytes()
			if err != nil {
				return nil, fmt.Errorf("failed to read operations: %w", err)
			}
			if !json.Valid(b) {
				return nil, errors.New("operations is not valid json")
			}
			res.Operations = json.RawMessage(b)
		case "map":
			b, err := field.Bytes()
			if err != nil {
				return nil, fmt.Errorf("failed to read map: %w", err)
			}
			err = json.Unmarshal(b, &fileMap)
			if err != nil {
				return nil, fmt.Errorf("failed to parse map: %w", err)
			}
		default:
			if !field.IsFile() {
				err := field.Discard()
				if err != nil {
					return nil, fmt.Errorf("failed to discard %s: %w", field.Name(), err)
				}
				continue
			}

			h := blake3.New()
			size, err := field.WriteTo(h)
			if err != nil {
				return nil, fmt.Errorf("failed to hash %s: %w", field.Name(), err)
			}

			res.Files = append(res.Files, uploadedFile{
				Field:       field.Name(),
				FileName:    field.FileName(),
				ContentType: field.MediaType(),
				Size:        size,
				BLAKE3:      hex.EncodeToString(h.Sum(nil)),
				Paths:       fileMap[field.Name()],
			})
		}
	}
	if res.Operations == nil {
		return nil, errors.New("missing operations")
	}
	res.Length = dec.Len()

	return &res, nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, formdata.ErrTooLargeForm),
		errors.Is(err, formdata.ErrFileTooLarge),
		errors.Is(err, formdata.ErrFieldTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}
