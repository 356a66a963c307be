package db

import "testing"

func TestMySQLDSNForcesParseTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"user:pw@tcp(db:3306)/careermatrix", "user:pw@tcp(db:3306)/careermatrix?parseTime=true"},
		{"user:pw@tcp(db:3306)/careermatrix?charset=utf8mb4", "user:pw@tcp(db:3306)/careermatrix?charset=utf8mb4&parseTime=true"},
		{"user:pw@tcp(db:3306)/careermatrix?parseTime=true", "user:pw@tcp(db:3306)/careermatrix?parseTime=true"},
		{"user:pw@tcp(db:3306)/careermatrix?parseTime=false", "user:pw@tcp(db:3306)/careermatrix?parseTime=false"},
	}
	for _, c := range cases {
		if got := mysqlDSN(c.in); got != c.want {
			t.Errorf("mysqlDSN(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	q := Placeholder("pgx")
	if q(1) != "$1" || q(3) != "$3" {
		t.Fatalf("pgx placeholders wrong: %q %q", q(1), q(3))
	}
	for _, driver := range []string{"sqlite", "mysql"} {
		if got := Placeholder(driver)(2); got != "?" {
			t.Fatalf("%s placeholder = %q, want ?", driver, got)
		}
	}
}
