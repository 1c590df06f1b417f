package config

type WorkerKeyStruct struct {
	SeedRequestsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	SeedRequestsQueue: "seed_requests_queue",
}
