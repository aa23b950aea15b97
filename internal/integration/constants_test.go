package integration_test

const (
	TestUserId      = 1
	OtherTestUserId = 2

	TestShowId         = 1
	StartingSoonShowId = 2

	SeatA1  = 1
	SeatA2  = 2
	SeatA10 = 3
	SeatB1  = 4

	TestUserEmail = "john@example.com"
)
