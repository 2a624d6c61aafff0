package datarecording

import (
	"os"
	"strings"
	"time"
)

// ExecTableName is the table that describes the program execution that
// produced a database.
const ExecTableName = "exec_info"

// ExecInfo is one property of the program execution.
type ExecInfo struct {
	Property string
	Value    string
}

// Records program execution
type execRecorder struct {
	recorder DataRecorder
	ended    bool
}

func newExecRecorder(recorder DataRecorder) *execRecorder {
	e := &execRecorder{recorder: recorder}
	recorder.CreateTable(ExecTableName, ExecInfo{})

	return e
}

// Start records the start time, the command and the working directory.
func (e *execRecorder) Start() {
	e.insert("Start Time", now())
	e.insert("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	e.insert("Working Directory", cwd)
}

// End records the end time. Only the first call has an effect.
func (e *execRecorder) End() {
	if e.ended {
		return
	}

	e.ended = true
	e.insert("End Time", now())
}

func (e *execRecorder) insert(property, value string) {
	e.recorder.InsertData(ExecTableName, ExecInfo{property, value})
}

func now() string {
	return time.Now().Format("2006-01-02 15:04:05.000000000")
}
