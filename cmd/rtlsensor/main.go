// Command rtlsensor decodes Rubicson and Prologue 433.92MHz temperature
// sensor frames from an RTL2832-class IQ stream, live or replayed from a
// file (spec §6).
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/spf13/pflag"

	"github.com/cwsl/rtlsensor/internal/config"
	"github.com/cwsl/rtlsensor/internal/metrics"
	"github.com/cwsl/rtlsensor/internal/pipeline"
	"github.com/cwsl/rtlsensor/internal/sink"
	"github.com/cwsl/rtlsensor/internal/source"
)

const (
	minBlockSize     = 512
	maxBlockSize     = 4194304
	defaultBlockSize = 262144
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		deviceIndex = pflag.IntP("device", "d", 0, "Device index")
		freqHz      = pflag.Uint32P("freq", "f", 433920000, "Center frequency in Hz")
		sampleRate  = pflag.Uint32P("samplerate", "s", 48000, "Sample rate in Hz")
		gainTenths  = pflag.IntP("gain", "g", 0, "Tuner gain in tenths of a dB; 0 selects auto")
		level       = pflag.IntP("level", "l", 10000, "Threshold level (squared-envelope units)")
		decimation  = pflag.UintP("decimation", "c", 0, "Decimation exponent")
		blockSize   = pflag.IntP("blocksize", "b", defaultBlockSize, "Block size in bytes, clamped to [512, 4194304]")
		numSamples  = pflag.Int64P("numsamples", "n", 0, "Complex samples to read before stopping (0 = unlimited)")
		analyze     = pflag.BoolP("analyze", "a", false, "Analyzer mode: report raw pulse timings instead of decoding")
		replayPath  = pflag.StringP("replay", "r", "", "Replay raw bytes from file instead of a live device")
		syncMode    = pflag.BoolP("sync", "S", false, "Read the device synchronously; blocks are decoded as in async mode (no raw IQ passthrough)")

		configPath = pflag.String("config", "", "Optional YAML config for the MQTT/WebSocket/Prometheus sinks")
		gzipRaw    = pflag.BoolP("gzip", "z", false, "Gzip-compress the raw sample sink on the fly")
		verbose    = pflag.BoolP("verbose", "v", false, "Verbose per-block diagnostics")
	)
	pflag.Parse()

	pipeline.DebugMode = *verbose

	if *blockSize < minBlockSize || *blockSize > maxBlockSize {
		log.Printf("block size %d out of range [%d, %d], falling back to default %d",
			*blockSize, minBlockSize, maxBlockSize, defaultBlockSize)
		*blockSize = defaultBlockSize
	}

	runID := uuid.NewString()
	if *verbose {
		if model, cores := cpuInfo(); model != "" {
			log.Printf("run %s starting: cpu=%q cores=%d", runID, model, cores)
		}
	}

	var rawSink *sink.RawFile
	outPath := ""
	if pflag.NArg() > 0 {
		outPath = pflag.Arg(0)
	}
	if outPath != "" {
		rs, closeFn, err := openRawSink(outPath, *gzipRaw)
		if err != nil {
			log.Printf("usage error: %v", err)
			return 1
		}
		rawSink = rs
		defer closeFn()
	}

	sinks := []pipeline.Sink{sink.NewTextSink(os.Stderr)}
	met := metrics.New()
	sinks = append(sinks, met)

	var wsSink *sink.WebSocketSink
	var httpServers []*http.Server
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Printf("usage error: %v", err)
			return 1
		}

		if cfg.MQTT.Broker != "" {
			m, err := sink.NewMQTTSink(cfg.MQTT)
			if err != nil {
				log.Printf("mqtt sink disabled: %v", err)
			} else {
				defer m.Close()
				sinks = append(sinks, m)
			}
		}

		// Prometheus shares the WebSocket listener when the two agree on
		// an address, and gets its own otherwise; either may run alone.
		byListen := map[string]*http.ServeMux{}
		muxFor := func(addr string) *http.ServeMux {
			m, ok := byListen[addr]
			if !ok {
				m = http.NewServeMux()
				byListen[addr] = m
			}
			return m
		}

		if cfg.WebSocket.Enabled && cfg.WebSocket.Listen != "" {
			wsSink = sink.NewWebSocketSink()
			sinks = append(sinks, wsSink)
			muxFor(cfg.WebSocket.Listen).HandleFunc(cfg.WebSocket.Path, wsSink.HandleHTTP)
		}
		if cfg.Prometheus.Enabled && cfg.Prometheus.Listen != "" {
			muxFor(cfg.Prometheus.Listen).Handle(cfg.Prometheus.Path, promhttp.Handler())
		}
		for addr, mux := range byListen {
			srv := &http.Server{Addr: addr, Handler: mux}
			httpServers = append(httpServers, srv)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Printf("sink http server on %s stopped: %v", srv.Addr, err)
				}
			}()
		}
	}

	pcfg := pipeline.Config{
		Decimation: *decimation,
		Level:      int32(*level),
		Analyze:    *analyze,
		RawSink:    rawSinkOrNil(rawSink),
	}
	if *numSamples > 0 {
		pcfg.BytesBudget = *numSamples * 2
	}
	coord := pipeline.New(pcfg, sinks...)
	met.SetLevel(pcfg.Level)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGPIPE)
		<-sigChan
		log.Println("shutting down on signal")
		cancel()
	}()
	defer cancel()

	prevOverflows := 0
	onBlock := func(b source.Block) (stop bool) {
		_, exhausted := coord.ProcessBlock(b.Data)
		overflows := coord.OverflowCount()
		met.ObserveBlock(overflows - prevOverflows)
		prevOverflows = overflows
		return exhausted
	}

	var adapter source.Adapter
	switch {
	case *syncMode:
		adapter = &source.SyncAdapter{Dev: source.NoDevice{}, BlockSize: *blockSize}
	case *replayPath != "":
		log.Printf("replaying %s", *replayPath)
		adapter = &source.FileAdapter{Path: *replayPath}
	default:
		log.Printf("tuning device %d to %d Hz at %d Hz sample rate, gain %d", *deviceIndex, *freqHz, *sampleRate, *gainTenths)
		adapter = &source.DeviceAdapter{
			Dev: source.NoDevice{},
			Config: source.DeviceConfig{
				Index:       *deviceIndex,
				FrequencyHz: *freqHz,
				SampleRate:  *sampleRate,
				GainTenths:  *gainTenths,
				BlockSize:   *blockSize,
			},
			Warn: func(format string, args ...any) { log.Printf("device warning: "+format, args...) },
		}
	}

	err := adapter.Run(ctx, onBlock)

	for _, srv := range httpServers {
		srv.Close()
	}

	if coord.OverflowCount() > 0 && *verbose {
		log.Printf("run %s finished with %d bit-packet overflows", runID, coord.OverflowCount())
	}

	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	log.Printf("source terminated: %v", err)
	return 1
}

func rawSinkOrNil(rs *sink.RawFile) pipeline.RawWriter {
	if rs == nil {
		return nil
	}
	return rs
}

func openRawSink(path string, gzipIt bool) (*sink.RawFile, func(), error) {
	if path == "-" {
		if gzipIt {
			rs := sink.NewGzipRawFile(os.Stdout)
			return rs, func() { rs.Close() }, nil
		}
		rs := sink.NewRawFile(os.Stdout, nil)
		return rs, func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create raw sink %q: %w", path, err)
	}
	if gzipIt {
		rs := sink.NewGzipRawFile(f)
		return rs, func() { rs.Close() }, nil
	}
	rs := sink.NewRawFile(f, f)
	return rs, func() { rs.Close() }, nil
}

func cpuInfo() (model string, cores int) {
	info, err := cpu.Info()
	if err != nil || len(info) == 0 {
		return "", 0
	}
	model = info[0].ModelName
	for _, c := range info {
		cores += int(c.Cores)
	}
	return model, cores
}
