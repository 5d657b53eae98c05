package camunda

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"cmdkit/command"
	"cmdkit/internal/common/logger"
)

// Bridge turns commands into Zeebe job handlers. A failed outcome becomes a
// BPMN error carrying the outcome's error sentence, so the process model can
// route on it; an unexpected error fails the job and leaves retries to the
// broker.
type Bridge struct {
	runner *command.Runner
	log    logger.Logger
}

func NewBridge(runner *command.Runner, log logger.Logger) *Bridge {
	return &Bridge{runner: runner, log: log}
}

// Handler adapts cmd to the Zeebe job handler signature. A zero timeout
// means the run is not deadline-bound.
func (b *Bridge) Handler(cmd command.Command, timeout time.Duration) func(worker.JobClient, entities.Job) {
	log := b.log.WithFields(map[string]interface{}{"command": cmd.Name()})

	return func(client worker.JobClient, job entities.Job) {
		log.Info("processing job", map[string]interface{}{
			"jobKey":             job.Key,
			"processInstanceKey": job.ProcessInstanceKey,
		})

		vars, err := job.GetVariablesAsMap()
		if err != nil {
			b.failJob(client, job, log, 0, "parse job variables: "+err.Error())
			return
		}

		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		oc, err := b.runner.Run(ctx, cmd, command.Inputs(vars))
		if err != nil {
			b.failJob(client, job, log, job.Retries-1, err.Error())
			return
		}

		if !oc.Success() {
			b.throwError(client, job, log, errorCode(cmd.Name()), oc.ErrorSentence())
			return
		}

		result, _ := oc.Result()
		b.completeJob(client, job, log, result)
	}
}

func (b *Bridge) completeJob(client worker.JobClient, job entities.Job, log logger.Logger, result any) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(map[string]any{"result": result})
	if err != nil {
		log.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
}

func (b *Bridge) throwError(client worker.JobClient, job entities.Job, log logger.Logger, code, message string) {
	log.Info("job failed with a recorded outcome", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    code,
		"errorMessage": message,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(code).
		ErrorMessage(message).
		Send(context.Background())
	if err != nil {
		log.Error("failed to throw BPMN error", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
}

func (b *Bridge) failJob(client worker.JobClient, job entities.Job, log logger.Logger, retries int32, message string) {
	log.Error("job failed unexpectedly", map[string]interface{}{
		"jobKey":       job.Key,
		"errorMessage": message,
		"retries":      retries,
	})

	_, err := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(message).
		Send(context.Background())
	if err != nil {
		log.Error("failed to fail job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
	}
}

// errorCode renders a command name as an upper-snake BPMN error code:
// "RegisterUser" becomes "REGISTER_USER_FAILED".
func errorCode(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	b.WriteString("_FAILED")
	return b.String()
}
