package version

var Version = "1.2.0"
