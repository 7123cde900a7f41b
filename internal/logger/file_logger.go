package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger represents a file logger for trading activities
type Logger struct {
	symbol  string
	logFile *os.File
	logger  *log.Logger
	mu      sync.Mutex
	logDir  string
}

// LogLevel represents different types of log entries
type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARN"
	LogLevelError   LogLevel = "ERROR"
	LogLevelTrade   LogLevel = "TRADE"
	LogLevelStatus  LogLevel = "STATUS"
)

// NewLogger creates a new file logger for the specified symbol
func NewLogger(symbol string) (*Logger, error) {
	// Create log directory if it doesn't exist
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Create log filename with timestamp
	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s.log", symbol, timestamp)
	logPath := filepath.Join(logDir, filename)

	// Open or create log file
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	// Create logger with timestamp and no prefix (we'll add our own formatting)
	logger := log.New(file, "", 0)

	l := &Logger{
		symbol:  symbol,
		logFile: file,
		logger:  logger,
		logDir:  logDir,
	}

	// Write session start header
	l.writeSessionHeader()

	return l, nil
}

// writeSessionHeader writes a session start header to the log
func (l *Logger) writeSessionHeader() {
	l.mu.Lock()
	defer l.mu.Unlock()

	header := fmt.Sprintf(`
================================================================================
🚀 MEAN REVERSION SESSION STARTED
================================================================================
Symbol: %s
Started: %s
Log File: %s_%s.log
================================================================================
`, l.symbol, time.Now().Format("2006-01-02 15:04:05"),
		l.symbol, time.Now().Format("2006-01-02"))

	l.logger.Print(header)
}

// Log writes a formatted log entry with the specified level
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	logEntry := fmt.Sprintf("[%s] [%s] %s", timestamp, level, message)

	l.logger.Println(logEntry)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LogLevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LogLevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LogLevelError, format, args...)
}

// Trade logs a trading action
func (l *Logger) Trade(format string, args ...interface{}) {
	l.Log(LogLevelTrade, format, args...)
}

// Status logs market status information
func (l *Logger) Status(format string, args ...interface{}) {
	l.Log(LogLevelStatus, format, args...)
}

// LogMarketStatus logs comprehensive market status
func (l *Logger) LogMarketStatus(currentPrice float64, state string, balance float64, entryPrice float64, stopLoss float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	statusLog := fmt.Sprintf(`
[%s] [STATUS] ==================== MARKET STATUS ====================
💰 Current Price: $%.2f | State: %s
💼 Balance: $%.2f`,
		timestamp, currentPrice, state, balance)

	if entryPrice > 0 {
		priceChangePercent := (currentPrice - entryPrice) / entryPrice * 100
		statusLog += fmt.Sprintf(`
📈 Entry Price: $%.2f | Stop Loss: $%.2f
📊 Price Change: %.2f%% | Position Status: ACTIVE`,
			entryPrice, stopLoss, priceChangePercent)
	} else {
		statusLog += "\n📊 Position Status: NO ACTIVE POSITION"
	}

	statusLog += "\n=========================================================="

	l.logger.Println(statusLog)
}

// LogTradeExecution logs trade execution details
func (l *Logger) LogTradeExecution(tradeType string, orderID string, quantity float64, price float64, stopLoss float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	tradeLog := fmt.Sprintf(`
[%s] [TRADE] ==================== %s EXECUTED ====================
✅ Order ID: %s
📦 Quantity: %v %s
💰 Price: $%.2f
🛑 Stop Loss: $%.2f
=============================================================`,
		timestamp, tradeType, orderID, quantity, l.symbol, price, stopLoss)

	l.logger.Println(tradeLog)
}

// LogCycleCompletion logs the close of a position
func (l *Logger) LogCycleCompletion(exitPrice float64, entryPrice float64, profitPercent float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	cycleLog := fmt.Sprintf(`
[%s] [TRADE] ==================== POSITION CLOSED ====================
🎯 Entry Price: $%.2f
🚪 Exit Price: $%.2f
📊 Price Change: %.2f%%
🔄 Back to flat, waiting for the next signal...
==============================================================`,
		timestamp, entryPrice, exitPrice, profitPercent)

	l.logger.Println(cycleLog)
}

// LogBalanceSync logs balance synchronization
func (l *Logger) LogBalanceSync(oldBalance, newBalance float64) {
	l.Info("Balance synced: $%.2f -> $%.2f", oldBalance, newBalance)
}

// LogError logs error with context
func (l *Logger) LogError(context string, err error) {
	l.Error("%s: %v", context, err)
}

// LogWarning logs warning with context
func (l *Logger) LogWarning(context string, message string, args ...interface{}) {
	fullMessage := fmt.Sprintf(context+": "+message, args...)
	l.Warning("%s", fullMessage)
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		// Write session end header
		timestamp := time.Now().Format("2006-01-02 15:04:05")
		footer := fmt.Sprintf(`
================================================================================
🛑 MEAN REVERSION SESSION ENDED
================================================================================
Ended: %s
================================================================================

`, timestamp)
		l.logger.Print(footer)

		return l.logFile.Close()
	}
	return nil
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s.log", l.symbol, timestamp)
	return filepath.Join(l.logDir, filename)
}
