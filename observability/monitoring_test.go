package observability

import (
	"chat-room/domain"
	"chat-room/mocks"
	goerrors "errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMonitoringManager_ObserveSweep(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	monitor := NewMonitoringManager(logs.GetLoggerFromLevel(slog.LevelDebug), func() time.Time { return at })

	// Given two successful sweeps and one failed listing
	monitor.ObserveSweep(domain.SweepReport{Evicted: []string{"alice", "bob"}}, nil)
	monitor.ObserveSweep(domain.SweepReport{Evicted: []string{"carol"}, Failed: []string{"dave"}}, nil)
	monitor.ObserveSweep(domain.SweepReport{}, goerrors.New("store down"))

	// Then every outcome is counted
	stats := monitor.Sweeps()
	req.Equal(uint64(3), stats.Sweeps)
	req.Equal(uint64(1), stats.FailedSweeps)
	req.Equal(uint64(3), stats.Evicted)
	req.Equal(uint64(1), stats.FailedEvicts)
	req.Equal("store down", stats.LastSweepFail)
	req.True(stats.LastSweepAt.Equal(at))
}

func TestMonitoringManager_Process(t *testing.T) {
	req := require.New(t)
	monitor := NewMonitoringManager(logs.GetLoggerFromLevel(slog.LevelDebug), time.Now)

	stats := monitor.Process()

	req.Equal(int32(os.Getpid()), stats.PID)
	req.Positive(stats.Goroutines)
}

func TestSweepObservers_FanOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockSweepObserver(ctrl)
	second := mocks.NewMockSweepObserver(ctrl)
	report := domain.SweepReport{Evicted: []string{"alice"}}

	first.EXPECT().ObserveSweep(report, nil)
	second.EXPECT().ObserveSweep(report, nil)

	SweepObservers{first, second}.ObserveSweep(report, nil)
}
