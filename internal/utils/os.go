package utils

import "runtime"

var isWindows = runtime.GOOS == "windows"
