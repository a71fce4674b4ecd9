package seeder

func Defaults() []Seeder {
	return []Seeder{
		UsersSeeder{},
		ProjectsSeeder{},
		SkillsSeeder{},
	}
}
