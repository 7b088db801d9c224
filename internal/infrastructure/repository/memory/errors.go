package memory

import "errors"

var (
	errFinalizeConflict = errors.New("memory: receipt is not draft")
	errReceiptGone      = errors.New("memory: receipt does not exist")
)
