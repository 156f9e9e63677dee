package cli

var FailureMessage = failureMessage
