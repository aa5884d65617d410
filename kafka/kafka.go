package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"

	"finsight/api/logger"
	"finsight/api/models"
)

var (
	AnalysisProducer *kafka.Producer
	TaskTopic        = "document_analysis_tasks"
	ResultTopic      = "document_analysis_results"
	GroupID          = "analysis-result-consumer"
)

type Settings struct {
	BootstrapServers string
	APIKey           string
	APISecret        string
}

func (s Settings) configMap(extra map[string]string) *kafka.ConfigMap {
	cfg := &kafka.ConfigMap{"bootstrap.servers": s.BootstrapServers}
	if s.APIKey != "" {
		cfg.SetKey("security.protocol", "SASL_SSL")
		cfg.SetKey("sasl.mechanism", "PLAIN")
		cfg.SetKey("sasl.username", s.APIKey)
		cfg.SetKey("sasl.password", s.APISecret)
	}
	for k, v := range extra {
		cfg.SetKey(k, v)
	}
	return cfg
}

func InitProducer(settings Settings) error {
	var err error
	AnalysisProducer, err = kafka.NewProducer(settings.configMap(nil))
	if err != nil {
		logger.Get().Error("failed to initialize Kafka producer",
			zap.String("bootstrap_servers", settings.BootstrapServers),
			zap.Error(err))
		return err
	}

	logger.Get().Info("Kafka producer initialized",
		zap.String("bootstrap_servers", settings.BootstrapServers))
	return nil
}

func CloseProducer() {
	if AnalysisProducer != nil {
		AnalysisProducer.Flush(5000)
		AnalysisProducer.Close()
	}
}

// ProduceAnalysisTask publishes one analysis request, keyed by document id so
// re-triggers of the same document stay on one partition.
func ProduceAnalysisTask(task *models.AnalysisTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshaling analysis task: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &TaskTopic, Partition: kafka.PartitionAny},
		Key:            []byte(task.DocumentID),
		Value:          payload,
	}
	if err := AnalysisProducer.Produce(msg, nil); err != nil {
		logger.Get().Error("failed to produce analysis task",
			zap.String("document_id", task.DocumentID),
			zap.Error(err))
		return err
	}

	logger.Get().Debug("analysis task produced",
		zap.String("document_id", task.DocumentID))
	return nil
}

// ResultSink receives raw result payloads with their partition; the worker
// pool implements it.
type ResultSink interface {
	Submit(payload []byte, partition int32)
}

// StartResultConsumer subscribes to the result topic and feeds payloads into
// the sink from a background goroutine. The returned stop func drains the
// goroutine and closes the consumer; call it before stopping the sink so no
// payload lands on a stopped pool.
func StartResultConsumer(settings Settings, sink ResultSink) (func(), error) {
	consumer, err := kafka.NewConsumer(settings.configMap(map[string]string{
		"group.id":           GroupID,
		"session.timeout.ms": "45000",
		"auto.offset.reset":  "latest",
	}))
	if err != nil {
		logger.Get().Error("failed to create result consumer",
			zap.String("bootstrap_servers", settings.BootstrapServers),
			zap.Error(err))
		return nil, err
	}

	if err := consumer.Subscribe(ResultTopic, nil); err != nil {
		logger.Get().Error("failed to subscribe to result topic",
			zap.String("topic", ResultTopic),
			zap.Error(err))
		consumer.Close()
		return nil, err
	}

	logger.Get().Info("analysis result consumer started",
		zap.String("topic", ResultTopic),
		zap.String("group_id", GroupID))

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for {
			select {
			case <-done:
				return
			default:
			}
			msg, err := consumer.ReadMessage(500 * time.Millisecond)
			if err != nil {
				var kafkaErr kafka.Error
				if errors.As(err, &kafkaErr) && kafkaErr.Code() == kafka.ErrTimedOut {
					continue
				}
				logger.Get().Error("result consumer error",
					zap.String("topic", ResultTopic),
					zap.Error(err))
				continue
			}
			sink.Submit(msg.Value, msg.TopicPartition.Partition)
		}
	}()

	stop := func() {
		close(done)
		<-finished
		if err := consumer.Close(); err != nil {
			logger.Get().Error("failed to close result consumer", zap.Error(err))
		}
		logger.Get().Info("analysis result consumer stopped")
	}
	return stop, nil
}
