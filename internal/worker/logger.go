package worker

import "github.com/sirupsen/logrus"

// asynqLogger routes asynq's internal logging through logrus.
type asynqLogger struct {
	entry *logrus.Entry
}

func (l asynqLogger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l asynqLogger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l asynqLogger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l asynqLogger) Error(args ...interface{}) { l.entry.Error(args...) }
func (l asynqLogger) Fatal(args ...interface{}) { l.entry.Fatal(args...) }
