package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler reports a failed assessment job back to the engine.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// CommandTimeout bounds a single complete, fail or throw command.
const CommandTimeout = 5 * time.Second

// CommandContext derives the context a job command is sent on. It keeps ctx's
// values but not its deadline: a job that failed by timing out must still be
// reported to the broker.
func CommandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), CommandTimeout)
}

// Resolution is what the engine is told about a failed job.
type Resolution struct {
	Throw   bool
	Retries int32
}

// Resolve picks between failing with retries and throwing a BPMN error. A job
// on its last engine retry is thrown so the process can branch on the code.
func Resolve(job entities.Job, bpmnErr *BPMNError) Resolution {
	if bpmnErr.Retries <= 0 || job.Retries <= 1 {
		return Resolution{Throw: true}
	}
	retries := int32(bpmnErr.Retries)
	if left := job.Retries - 1; left < retries {
		retries = left
	}
	return Resolution{Retries: retries}
}

// HandleJobError reports err for job and returns the BPMN error code used.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) string {
	stdErr := Normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)
	res := Resolve(job, bpmnErr)

	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":             job.Key,
		"jobType":            job.Type,
		"processInstanceKey": job.ProcessInstanceKey,
		"errorCode":          string(stdErr.Code),
		"errorCategory":      GetErrorCategory(stdErr.Code),
		"bpmnErrorCode":      bpmnErr.Code,
		"message":            bpmnErr.Message,
		"details":            stdErr.Details,
		"thrown":             res.Throw,
		"retries":            res.Retries,
	})

	sendCtx, cancel := CommandContext(ctx)
	defer cancel()

	vars, _ := json.Marshal(bpmnErr.ToErrorVariables())

	var sendErr error
	if res.Throw {
		cmd := client.NewThrowErrorCommand().JobKey(job.Key).ErrorCode(bpmnErr.Code).ErrorMessage(bpmnErr.Message)
		if withVars, err := cmd.VariablesFromString(string(vars)); err == nil {
			_, sendErr = withVars.Send(sendCtx)
		} else {
			_, sendErr = cmd.Send(sendCtx)
		}
	} else {
		cmd := client.NewFailJobCommand().JobKey(job.Key).Retries(res.Retries).ErrorMessage(bpmnErr.Message)
		if withVars, err := cmd.VariablesFromString(string(vars)); err == nil {
			_, sendErr = withVars.Send(sendCtx)
		} else {
			_, sendErr = cmd.Send(sendCtx)
		}
	}
	if sendErr != nil {
		h.logger.Error("failed to report job failure", map[string]interface{}{
			"jobKey":        job.Key,
			"bpmnErrorCode": bpmnErr.Code,
			"thrown":        res.Throw,
			"error":         sendErr.Error(),
		})
	}
	return bpmnErr.Code
}

// Normalize returns the StandardError in err's chain, or wraps err as an internal error.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}
