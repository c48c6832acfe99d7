package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/logrusorgru/aurora"

	"github.com/aviralksingh/xbox-control/internal/pkg/bridge"
	"github.com/aviralksingh/xbox-control/internal/pkg/controller"
	"github.com/aviralksingh/xbox-control/internal/pkg/input"
	"github.com/aviralksingh/xbox-control/internal/pkg/logger"
	"github.com/aviralksingh/xbox-control/internal/pkg/proto"
	"github.com/aviralksingh/xbox-control/internal/pkg/xboxctl"
)

var log = logger.GetLogger()

var (
	grab       = flag.Bool("grab", true, "grab input devices for exclusive usage")
	configPath = flag.String("config", xboxctl.DefaultConfigPath, "path to the application ini file")
	nocolor    = flag.Bool("nocolor", false, "disable color")
	silent     = flag.Bool("silent", false, "no output logging")
	logLevel   = flag.Int("loglevel", logger.ActionLvl,
		"logging level, each level enables additional information class (0-5)\n"+
			"0: errors\n"+
			"1: warnings\n"+
			"2: general info\n"+
			"3: actions (device admission, effect start/stop)\n"+
			"4: individual input events, very noisy\n"+
			"5: debug",
	)
)

func handleSigs(wg *sync.WaitGroup, sigs <-chan os.Signal, cancel func()) {
	defer wg.Done()
	var counter int
	for sig := range sigs {
		if counter > 0 {
			fmt.Println("Dirty exit")
			os.Exit(1)
		}
		log.Info(fmt.Sprintf("signal received: %v", sig), logger.Debug)
		cancel()
		counter++
	}
}

func drainLogs(silent, colors bool, logLevel int) {
	if silent {
		for range logger.Messages {
		}
		return
	}

	au := aurora.NewAurora(colors)
	for data := range logger.Messages {
		msg, err := logger.Unpack(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", string(data))
			continue
		}
		m := logger.Format(msg, au, logLevel)
		if m != "" {
			fmt.Fprintf(os.Stderr, "%s\n", m)
		}
	}
}

func fatal(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

func main() {
	flag.Parse()

	cfg, err := xboxctl.LoadConfig(*configPath)
	if err != nil {
		fatal("%v", err)
	}

	host := "127.0.0.1"
	port := cfg.Network.EventPort
	args := flag.Args()
	if len(args) >= 1 {
		host = args[0]
	}
	if len(args) >= 2 {
		port, err = strconv.Atoi(args[1])
		if err != nil || port < 1 || port > 65534 {
			fatal("invalid port %q", args[1])
		}
	}

	var sigs = make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())

	wg := sync.WaitGroup{}
	wg.Add(1)
	go handleSigs(&wg, sigs, cancel)

	go drainLogs(*silent, !*nocolor, *logLevel)

	publisher, err := bridge.NewPublisher(host, port)
	if err != nil {
		fatal("%v", err)
	}
	endpoint, err := bridge.NewVibrationEndpoint(proto.VibrationPort(port))
	if err != nil {
		fatal("%v", err)
	}

	manager := controller.NewManager()
	registry := input.NewRegistry(manager, cfg.Devices.Grab && *grab)

	// change notifications are advisory only, admitted devices keep the
	// config they matched until restart
	changes := controller.DetectConfigChanges(ctx, controller.DefaultDirs())
	go func() {
		for range changes {
		}
	}()

	log.Info(fmt.Sprintf("publishing events to %s:%d, listening for vibration on :%d",
		host, port, proto.VibrationPort(port)), logger.Info)

	loop := bridge.NewLoop(registry, publisher, endpoint, cfg.Devices.RescanInterval)
	loop.Run(ctx)

	err = publisher.Close()
	if err != nil {
		log.Info(fmt.Sprintf("closing publisher failed: %v", err), logger.Warning)
	}

	close(sigs)
	wg.Wait()
	close(logger.Messages)
}
