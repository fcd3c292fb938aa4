package deploy

const (
	exitCodeUsage = 1
	exitCodeFatal = 1
)

type exitError struct {
	code int
	msg  string
}

func (e exitError) Error() string { return e.msg }
func (e exitError) ExitCode() int { return e.code }

func usageError(msg string) error { return exitError{code: exitCodeUsage, msg: msg} }

func fatal(err error) error {
	if err == nil {
		return nil
	}
	return exitError{code: exitCodeFatal, msg: err.Error()}
}
