package mysql

import "time"

type Config struct {
	ConnectTimeout time.Duration `env:"MYSQL_CONNECT_TIMEOUT" envDefault:"10s"` // ConnectTimeout bounds each connection attempt.
	RetryAttempts  int           `env:"MYSQL_RETRY_ATTEMPTS" envDefault:"3"`    // RetryAttempts is the number of retry attempts to connect to the database.
	RetryInterval  time.Duration `env:"MYSQL_RETRY_INTERVAL" envDefault:"5s"`   // RetryInterval is the interval between retry attempts. It should be in the format "5s" for 5 seconds.
}
