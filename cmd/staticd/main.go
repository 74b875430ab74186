package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/ehrlich-b/go-staticd"
	"github.com/ehrlich-b/go-staticd/internal/logging"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] <port>\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	var (
		addr    = flag.String("addr", "0.0.0.0", "IPv4 address to bind")
		root    = flag.String("root", ".", "Document root to serve files from")
		workers = flag.Int("workers", staticd.DefaultWorkerCount, "Worker pool size")
		maxConn = flag.Int("max-conns", staticd.MaxConnections, "Maximum concurrent connections")
		verbose = flag.Bool("v", false, "Verbose output")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	port, err := strconv.Atoi(flag.Arg(0))
	if err != nil || port < 1 || port > 65535 {
		fmt.Fprintf(os.Stderr, "invalid port %q\n", flag.Arg(0))
		usage()
		os.Exit(1)
	}

	// Set up logging
	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	params := staticd.DefaultParams(*root)
	params.Addr = *addr
	params.Port = port
	params.Workers = *workers
	params.MaxConnections = *maxConn

	options := &staticd.Options{Logger: logger}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := staticd.ListenAndServe(ctx, params, options)
	if err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	logger.Info("server started",
		"addr", *addr,
		"port", srv.Port,
		"root", *root,
		"workers", srv.Workers())

	fmt.Printf("Serving %s on %s:%d\n", *root, *addr, srv.Port)
	fmt.Printf("Press Ctrl+C to stop...\n")
	fmt.Printf("Send SIGUSR1 (kill -USR1 %d) to dump goroutine stacks\n", os.Getpid())

	// Set up SIGUSR1 handler for stack trace dumps
	stackDumpCh := make(chan os.Signal, 1)
	signal.Notify(stackDumpCh, syscall.SIGUSR1)
	go func() {
		for range stackDumpCh {
			buf := make([]byte, 1024*1024)
			n := runtime.Stack(buf, true)
			fmt.Fprintf(os.Stderr, "\n=== GOROUTINE STACK DUMP ===\n%s\n=== END STACK DUMP ===\n\n", buf[:n])

			snap := srv.MetricsSnapshot()
			logger.Info("metrics snapshot",
				"requests", snap.TotalRequests,
				"bytes_sent", snap.BytesSent,
				"active_conns", snap.ActiveConnections,
				"error_rate", fmt.Sprintf("%.1f%%", snap.ErrorRate))
		}
	}()

	// Wait for signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	} else {
		logger.Info("server stopped cleanly")
	}

	os.Exit(0)
}
