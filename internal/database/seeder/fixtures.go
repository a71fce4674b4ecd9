package seeder

import "github.com/google/uuid"

// Fixed IDs keep seeding idempotent and let demo requests reference the rows.
var (
	AdminID    = uuid.MustParse("00000000-0000-4000-8000-000000000001")
	ManagerID  = uuid.MustParse("00000000-0000-4000-8000-000000000002")
	EmployeeID = uuid.MustParse("00000000-0000-4000-8000-000000000003")
	Employee2  = uuid.MustParse("00000000-0000-4000-8000-000000000004")

	AcmeClientID  = uuid.MustParse("00000000-0000-4000-8000-000000000101")
	ApolloProject = uuid.MustParse("00000000-0000-4000-8000-000000000201")
	GeminiProject = uuid.MustParse("00000000-0000-4000-8000-000000000202")
)
