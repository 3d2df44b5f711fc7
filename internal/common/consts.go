package common

// UnknownStr is the display name of anything that cannot be resolved.
const UnknownStr = "unknown"
