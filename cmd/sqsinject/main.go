package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/andina-core/sqs-event-router/internal/inject"
	"github.com/andina-core/sqs-event-router/internal/routing"
)

type Options struct {
	Endpoint  string `short:"e" long:"endpoint" env:"SQS_ENDPOINT" default:"http://localhost:4566" description:"SQS emulator endpoint"`
	Region    string `short:"r" long:"region" env:"AWS_REGION" default:"us-east-1" description:"AWS region"`
	Namespace string `short:"n" long:"namespace" default:"andina-core" description:"Queue name namespace"`
	ID        int    `long:"id" default:"12345" description:"Message id sent in the test body"`

	Args struct {
		Command string `positional-arg-name:"list|all|dev|qa|uat" required:"yes"`
		Type    string `positional-arg-name:"type"`
	} `positional-args:"yes"`
}

var options Options
var parser = flags.NewParser(&options, flags.Default)

func init() {
	parser.Usage = `[OPTIONS] <command> [type]

  list          list every queue in the emulator
  all           send to masivo-suscripcion-cotizacion in dev, qa and uat
  <env>         send to <env>-<namespace>-masivo-suscripcion-cotizacion
  <env> <type>  send to <env>-<namespace>-<type>`
}

func main() {
	if _, err := parser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(context.Background(), options, logger); err != nil {
		logger.Error("sqsinject failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, options Options, logger *zap.Logger) error {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(options.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	if err != nil {
		return errors.Wrap(err, "configuration error")
	}
	client := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		o.BaseEndpoint = aws.String(options.Endpoint)
	})

	inj := inject.New(client, inject.WithLogger(logger), inject.WithNamespace(options.Namespace))

	switch cmd := options.Args.Command; {
	case cmd == "list":
		names, err := inj.ListQueues(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Queues in emulator:")
		for _, name := range names {
			fmt.Printf("  • %s\n", name)
		}
		fmt.Printf("\nTotal: %d queues\n", len(names))
		return nil

	case cmd == "all":
		sent, err := inj.SendAll(ctx)
		for _, s := range sent {
			printSent(s)
		}
		return err

	case inject.IsEnvironment(cmd):
		typ := inject.DefaultType
		if options.Args.Type != "" {
			typ = routing.MessageType(options.Args.Type)
		}
		s, err := inj.Send(ctx, cmd, typ, options.ID)
		if err != nil {
			return err
		}
		printSent(s)
		return nil

	default:
		return errors.Errorf("unknown command %q", cmd)
	}
}

func printSent(s inject.Sent) {
	body, _ := json.MarshalIndent(s.Message, "   ", "  ")
	fmt.Printf("✅ Message sent to %s\n   ID: %s\n   Body: %s\n\n", s.Queue, s.MessageID, body)
}
