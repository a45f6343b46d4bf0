// Package logger wraps logrus with level-gated helpers that prefix every
// message with the emitting object.
package logger

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
)

type stringer interface {
	String() string
}

const objWidth = 20

func objToString(obj any) (objStr string) {
	if obj == nil {
		objStr = "NIL"
	} else if stringerObj, ok := obj.(stringer); ok {
		objStr = stringerObj.String()
	} else if objStr, ok = obj.(string); ok {
	} else {
		objStr = reflect.TypeOf(obj).Name()
	}
	if len(objStr) > objWidth {
		objStr = objStr[:objWidth]
	}
	return
}

// Init configures the global logrus level and formatter.
func Init(lvl logrus.Level) {
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		PadLevelText:    true,
		TimestampFormat: "2006/02/01 15:04:05",
	})
}

func emit(logFn func(...any), obj any, msg string) {
	logFn(fmt.Sprintf("|%*s|%s", objWidth, objToString(obj), msg))
}

func Trace(object any, message string) {
	if logrus.GetLevel() < logrus.TraceLevel {
		return
	}
	emit(logrus.Trace, object, message)
}

func Tracef(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.TraceLevel {
		return
	}
	emit(logrus.Trace, object, fmt.Sprintf(message, args...))
}

func Debug(object any, message string) {
	if logrus.GetLevel() < logrus.DebugLevel {
		return
	}
	emit(logrus.Debug, object, message)
}

func Debugf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.DebugLevel {
		return
	}
	emit(logrus.Debug, object, fmt.Sprintf(message, args...))
}

func Info(object any, message string) {
	if logrus.GetLevel() < logrus.InfoLevel {
		return
	}
	emit(logrus.Info, object, message)
}

func Infof(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.InfoLevel {
		return
	}
	emit(logrus.Info, object, fmt.Sprintf(message, args...))
}

func Warning(object any, message string) {
	if logrus.GetLevel() < logrus.WarnLevel {
		return
	}
	emit(logrus.Warning, object, message)
}

func Warningf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.WarnLevel {
		return
	}
	emit(logrus.Warning, object, fmt.Sprintf(message, args...))
}

func Error(object any, message string) {
	if logrus.GetLevel() < logrus.ErrorLevel {
		return
	}
	emit(logrus.Error, object, message)
}

func Errorf(object any, message string, args ...any) {
	if logrus.GetLevel() < logrus.ErrorLevel {
		return
	}
	emit(logrus.Error, object, fmt.Sprintf(message, args...))
}
