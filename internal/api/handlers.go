package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rgehrsitz/finrechner/internal/calculation"
	"github.com/rgehrsitz/finrechner/internal/config"
	"github.com/rgehrsitz/finrechner/internal/domain"
	"github.com/rgehrsitz/finrechner/internal/output"
	"github.com/valyala/fasthttp"
)

const apiPrefix = "/api/v1/"

// calculator decodes a request body and computes its report section
type calculator func(s *Server, ctx context.Context, body []byte) (result any, report *output.Report, err error)

var routes = map[string]calculator{
	"compound":       (*Server).compound,
	"retirement":     (*Server).retirement,
	"withdrawal":     (*Server).withdrawal,
	"withdrawal/max": (*Server).maxWithdrawal,
	"goals":          (*Server).goals,
	"montecarlo":     (*Server).monteCarlo,
}

// errBadRequest marks a body that is not valid JSON
var errBadRequest = errors.New("bad request")

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	if path == "/healthz" {
		if !ctx.IsGet() {
			writeError(ctx, fasthttp.StatusMethodNotAllowed, "method_not_allowed", "use GET")
			return
		}
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":"ok"}`)
		return
	}

	if len(path) <= len(apiPrefix) || path[:len(apiPrefix)] != apiPrefix {
		writeError(ctx, fasthttp.StatusNotFound, "not_found", "unknown route "+path)
		return
	}
	operation := path[len(apiPrefix):]
	calc, ok := routes[operation]
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, "not_found", "unknown route "+path)
		return
	}
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	format := string(ctx.QueryArgs().Peek("format"))
	var formatter output.Formatter
	if format != "" && format != "json" {
		if formatter = output.GetFormatterByName(format); formatter == nil {
			writeError(ctx, fasthttp.StatusBadRequest, "bad_request", "unknown format "+format)
			return
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, s.calculationTimeout())
	defer cancel()

	started := time.Now().UTC()
	result, report, err := calc(s, runCtx, ctx.PostBody())
	completed := time.Now().UTC()
	if err != nil {
		status, kind := statusFor(err)
		if status >= fasthttp.StatusInternalServerError {
			s.logger().Errorf("%s failed: %v", operation, err)
		}
		writeError(ctx, status, kind, err.Error())
		return
	}

	meta := CalculationMetadata{
		CalculationID:          uuid.New().String(),
		Operation:              operation,
		CalculationStartedAt:   started.Format(time.RFC3339Nano),
		CalculationCompletedAt: completed.Format(time.RFC3339Nano),
		CalculationDurationMs:  completed.Sub(started).Milliseconds(),
		CalculationOutcome:     OutcomeSuccess,
	}

	if formatter != nil {
		body, err := formatter.Format(report)
		if err != nil {
			writeError(ctx, fasthttp.StatusInternalServerError, "internal", err.Error())
			return
		}
		ctx.Response.Header.Set("X-Calculation-Id", meta.CalculationID)
		if formatter.Name() == "csv" {
			ctx.SetContentType("text/csv; charset=utf-8")
		} else {
			ctx.SetContentType("text/plain; charset=utf-8")
		}
		ctx.SetBody(body)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, CalculationResponse{
		CalculationMetadata: meta,
		CalculationResult:   result,
	})
}

func (s *Server) compound(_ context.Context, body []byte) (any, *output.Report, error) {
	var params domain.CompoundParams
	if err := decode(body, &params); err != nil {
		return nil, nil, err
	}
	input := config.Input{Compound: &params}
	if err := s.parser.Normalize(&input); err != nil {
		return nil, nil, err
	}
	points, err := calculation.SimulateCompoundGrowth(params)
	if err != nil {
		return nil, nil, err
	}
	projection := output.NewProjectionReport(points)
	return projection, &output.Report{Projection: projection}, nil
}

func (s *Server) retirement(_ context.Context, body []byte) (any, *output.Report, error) {
	var req config.RetirementInput
	if err := decode(body, &req); err != nil {
		return nil, nil, err
	}
	input := config.Input{Retirement: &req}
	if err := s.parser.Normalize(&input); err != nil {
		return nil, nil, err
	}
	result, err := calculation.SolveRetirement(req.Mode, req.RetirementParams)
	if err != nil {
		return nil, nil, err
	}
	return result, &output.Report{Retirement: result}, nil
}

func (s *Server) withdrawal(_ context.Context, body []byte) (any, *output.Report, error) {
	var params domain.WithdrawalParams
	if err := decode(body, &params); err != nil {
		return nil, nil, err
	}
	plan, err := calculation.SimulateWithdrawalPlan(params)
	if err != nil {
		return nil, nil, err
	}
	return plan, &output.Report{Withdrawal: plan}, nil
}

func (s *Server) maxWithdrawal(_ context.Context, body []byte) (any, *output.Report, error) {
	var params domain.MaxWithdrawalParams
	if err := decode(body, &params); err != nil {
		return nil, nil, err
	}
	input := config.Input{MaxWithdrawal: &params}
	if err := s.parser.Normalize(&input); err != nil {
		return nil, nil, err
	}
	monthly, err := calculation.SolveMaxWithdrawal(params)
	if err != nil {
		return nil, nil, err
	}
	result := &output.MaxWithdrawalReport{Params: params, MonthlyWithdrawal: monthly}
	return result, &output.Report{MaxWithdrawal: result}, nil
}

func (s *Server) goals(_ context.Context, body []byte) (any, *output.Report, error) {
	var req config.GoalsInput
	if err := decode(body, &req); err != nil {
		return nil, nil, err
	}
	timeline, err := calculation.CalculateGoalTimeline(req.Savings, req.Goals)
	if err != nil {
		return nil, nil, err
	}
	return timeline, &output.Report{Goals: timeline}, nil
}

func (s *Server) monteCarlo(ctx context.Context, body []byte) (any, *output.Report, error) {
	var req MonteCarloRequest
	if err := decode(body, &req); err != nil {
		return nil, nil, err
	}
	params := req.MonteCarloParams
	if s.Settings != nil {
		s.Settings.ApplyMonteCarloDefaults(&params)
	}

	if req.Estimate {
		if s.Estimator == nil {
			return nil, nil, &domain.CalcError{
				Kind:      domain.ErrExternalDataUnavailable,
				Operation: "montecarlo",
				Message:   "no price source configured",
			}
		}
		assets, err := s.Estimator.EstimateAssets(ctx, params.Assets)
		if err != nil {
			return nil, nil, err
		}
		params.Assets = assets
	}

	result, err := s.Engine.Run(ctx, params, nil)
	if err != nil {
		return nil, nil, err
	}
	return result, &output.Report{MonteCarlo: result}, nil
}

func decode(body []byte, v any) error {
	if len(body) == 0 {
		return fmt.Errorf("%w: empty request body", errBadRequest)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return fasthttp.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrInvalidInterval):
		return fasthttp.StatusUnprocessableEntity, "invalid_interval"
	case errors.Is(err, domain.ErrInvalidInput):
		return fasthttp.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, domain.ErrConstraintViolation):
		return fasthttp.StatusUnprocessableEntity, "constraint_violation"
	case errors.Is(err, domain.ErrExternalDataUnavailable):
		return fasthttp.StatusBadGateway, "external_data_unavailable"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fasthttp.StatusServiceUnavailable, "timeout"
	default:
		return fasthttp.StatusInternalServerError, "internal"
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, "internal", err.Error())
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, kind, message string) {
	body, _ := json.Marshal(ErrorResponse{
		Status:  status,
		Kind:    kind,
		Message: message,
	})
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}
