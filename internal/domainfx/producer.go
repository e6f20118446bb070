package domainfx

import (
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/dbxbackuper/internal/configfx"
	"github.com/yurykabanov/dbxbackuper/internal/dockerfx"
	"github.com/yurykabanov/dbxbackuper/pkg/backup"
	"github.com/yurykabanov/dbxbackuper/pkg/producer"
)

func Producer(
	logger *logrus.Logger,
	config *configfx.ProducerConfig,
	docker *dockerfx.ClientFactory,
) (backup.Producer, error) {
	switch config.Kind {
	case producer.KindProcess:
		return producer.NewProcess(logger, config.Process), nil

	case producer.KindDocker:
		client, err := docker.Client()
		if err != nil {
			return nil, err
		}

		return producer.NewDocker(logger, config.Docker, client), nil

	default:
		return producer.NewNoop(), nil
	}
}
