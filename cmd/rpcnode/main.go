package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/validatorops/rpcnode/internal/conf"
	"gopkg.in/natefinch/lumberjack.v2"
)

const provisionLogFile = "/var/log/rpcnode/provision.log"

func main() {
	godotenv.Load()
	c, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rpcnode: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(c)
	runner, err := wireApp(c, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rpcnode: %v\n", err)
		os.Exit(1)
	}
	if err := runner.Run(context.Background()); err != nil {
		log.NewHelper(logger).Errorf("provisioning failed: %v", err)
		fmt.Fprintf(os.Stderr, "rpcnode: %v\n", err)
		os.Exit(1)
	}
	log.NewHelper(logger).Info("provisioning complete")
}

// newLogger writes to stdout, plus a rotating log file when running as root
// against the local host. The file sink is skipped otherwise so a failed
// privilege gate leaves no trace on the filesystem.
func newLogger(c *conf.Bootstrap) log.Logger {
	var out io.Writer = os.Stdout
	if os.Geteuid() == 0 && !c.DryRun && c.Ssh.Host == "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   provisionLogFile,
			MaxSize:    10,
			MaxBackups: 3,
		})
	}
	return log.With(log.NewStdLogger(out),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"run_id", uuid.NewString(),
	)
}
