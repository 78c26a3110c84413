// shelfd-lambda serves the same item routes behind API Gateway.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/jacentio/shelf/httpapi"
	"github.com/jacentio/shelf/store"
)

type Config struct {
	Region        string `env:"AWS_REGION" env-default:"us-east-1"`
	ItemsTable    string `env:"SHELF_ITEMS_TABLE" env-default:"shelf_items"`
	CountersTable string `env:"SHELF_COUNTERS_TABLE" env-default:"shelf_counters"`
	TypeIndex     string `env:"SHELF_TYPE_INDEX" env-default:"type-index"`
	AllowedOwners string `env:"SHELF_ALLOWED_OWNERS" env-default:"organization:1"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		logger.Error("failed to load AWS configuration", "error", err)
		os.Exit(1)
	}

	s := store.New(dynamodb.NewFromConfig(awsCfg), store.Config{
		ItemsTable:    cfg.ItemsTable,
		CountersTable: cfg.CountersTable,
		TypeIndex:     cfg.TypeIndex,
	})
	auth := httpapi.NewAllowList(strings.Split(cfg.AllowedOwners, ","))
	router := httpapi.New(s, auth, logger).Routes()

	lambda.Start(func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return serve(ctx, router, event)
	})
}

// serve translates one API Gateway proxy event into an http.Request, runs
// it through the router, and translates the recorded response back.
func serve(ctx context.Context, router http.Handler, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return events.APIGatewayProxyResponse{StatusCode: http.StatusBadRequest}, nil
		}
		body = string(decoded)
	}

	u := url.URL{Path: event.Path, RawQuery: rawQuery(event.QueryStringParameters)}
	req, err := http.NewRequestWithContext(ctx, event.HTTPMethod, u.String(), strings.NewReader(body))
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	for k, v := range event.Headers {
		req.Header.Set(k, v)
	}

	rec := &responseRecorder{header: http.Header{}}
	router.ServeHTTP(rec, req)

	headers := make(map[string]string, len(rec.header))
	for k, values := range rec.header {
		headers[k] = strings.Join(values, ",")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: rec.status(),
		Headers:    headers,
		Body:       rec.body.String(),
	}, nil
}

func rawQuery(params map[string]string) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}

// responseRecorder captures the router's response for the proxy reply.
type responseRecorder struct {
	code   int
	header http.Header
	body   bytes.Buffer
}

func (r *responseRecorder) Header() http.Header { return r.header }

func (r *responseRecorder) WriteHeader(code int) {
	if r.code == 0 {
		r.code = code
	}
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.code == 0 {
		r.code = http.StatusOK
	}
	return r.body.Write(b)
}

func (r *responseRecorder) status() int {
	if r.code == 0 {
		return http.StatusOK
	}
	return r.code
}
