package config

type WorkerKeyStruct struct {
	// PersistActivityQueue holds learning events waiting to be folded into usage and progress.
	PersistActivityQueue string
	// DeadActivityQueue holds events that could not be persisted even one learner at a time.
	DeadActivityQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistActivityQueue: "persist_activity_queue",
	DeadActivityQueue:    "dead_activity_queue",
}
