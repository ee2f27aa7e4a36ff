//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/okian/staffing/internal/adapters/instance"
	service "github.com/okian/staffing/internal/app"
	"github.com/okian/staffing/internal/config"
	"github.com/okian/staffing/internal/domain/model"
	"github.com/okian/staffing/pkg/logger"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

// handler plans the JSON instance in the request body and answers with the
// plan. A run cut short by the invocation deadline still answers with the
// partial plan, marked unfinished.
func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(http.StatusBadRequest, "invalid base64 body")
		}
		body = string(decoded)
	}

	in, err := instance.ReadJSON([]byte(body))
	if err != nil {
		return errResp(http.StatusBadRequest, err.Error())
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return errResp(http.StatusInternalServerError, err.Error())
	}
	svc := service.New(
		service.WithAllocatorBudget(cfg.AllocatorBudget()),
		service.WithAllocatorAttempts(cfg.AllocatorAttempts),
		service.WithAllocatorWorkers(cfg.AllocatorWorkers),
		service.WithSeed(cfg.AllocatorSeed),
		service.WithSettleWindow(cfg.AllocatorSettle()),
		service.WithTopK(cfg.SelectionTopK),
		service.WithBranches(cfg.ExplorerBranches),
		service.WithExplorerWorkers(cfg.ExplorerWorkers),
		service.WithQueueSize(cfg.ExplorerQueueSize),
	)

	plan, err := svc.Plan(ctx, in)
	switch {
	case errors.Is(err, model.ErrInvalidInstance):
		return errResp(http.StatusBadRequest, err.Error())
	case plan == nil:
		return errResp(http.StatusGatewayTimeout, err.Error())
	}
	if err != nil {
		logger.Get().Warn(ctx, "returning partial plan", logger.Error(err))
	}

	respJSON, _ := json.Marshal(plan.Response(err == nil))
	return events.LambdaFunctionURLResponse{StatusCode: http.StatusOK, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	if err := logger.InitWithWriter(os.Stderr, "json"); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	lambda.Start(handler)
}
