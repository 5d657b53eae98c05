package camunda

import (
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"cmdkit/internal/common/logger"
)

// Worker polls one task type and dispatches each job through a bridge
// handler.
type Worker struct {
	worker   worker.JobWorker
	log      logger.Logger
	taskType string
}

func NewWorker(
	client zbc.Client,
	taskType string,
	maxJobsActive int,
	handler func(worker.JobClient, entities.Job),
	log logger.Logger,
) *Worker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler).
		MaxJobsActive(maxJobsActive).
		Open()

	log.Info("worker started", map[string]interface{}{"taskType": taskType})

	return &Worker{
		worker:   jobWorker,
		log:      log,
		taskType: taskType,
	}
}

func (w *Worker) Stop() {
	w.log.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
}
