package extract

// DefaultEntities is the built-in alias table, NFL then NBA.
// City names alone are left out where two franchises share them.
var DefaultEntities = []Entity{
	{Canonical: "Arizona Cardinals", Domain: "nfl", Aliases: []string{"Cardinals", "Cards", "ARI"}},
	{Canonical: "Atlanta Falcons", Domain: "nfl", Aliases: []string{"Falcons"}},
	{Canonical: "Baltimore Ravens", Domain: "nfl", Aliases: []string{"Ravens", "BAL"}},
	{Canonical: "Buffalo Bills", Domain: "nfl", Aliases: []string{"Bills", "BUF"}},
	{Canonical: "Carolina Panthers", Domain: "nfl", Aliases: []string{"Panthers"}},
	{Canonical: "Chicago Bears", Domain: "nfl", Aliases: []string{"Bears"}},
	{Canonical: "Cincinnati Bengals", Domain: "nfl", Aliases: []string{"Bengals", "CIN"}},
	{Canonical: "Cleveland Browns", Domain: "nfl", Aliases: []string{"Browns"}},
	{Canonical: "Dallas Cowboys", Domain: "nfl", Aliases: []string{"Cowboys"}},
	{Canonical: "Denver Broncos", Domain: "nfl", Aliases: []string{"Broncos"}},
	{Canonical: "Detroit Lions", Domain: "nfl", Aliases: []string{"Lions"}},
	{Canonical: "Green Bay Packers", Domain: "nfl", Aliases: []string{"Packers", "GB"}},
	{Canonical: "Houston Texans", Domain: "nfl", Aliases: []string{"Texans"}},
	{Canonical: "Indianapolis Colts", Domain: "nfl", Aliases: []string{"Colts"}},
	{Canonical: "Jacksonville Jaguars", Domain: "nfl", Aliases: []string{"Jaguars", "Jags", "JAX"}},
	{Canonical: "Kansas City Chiefs", Domain: "nfl", Aliases: []string{"Chiefs", "KC"}},
	{Canonical: "Las Vegas Raiders", Domain: "nfl", Aliases: []string{"Raiders", "Oakland Raiders", "LV"}},
	{Canonical: "Los Angeles Chargers", Domain: "nfl", Aliases: []string{"Chargers", "Bolts"}},
	{Canonical: "Los Angeles Rams", Domain: "nfl", Aliases: []string{"Rams", "LAR"}},
	{Canonical: "Miami Dolphins", Domain: "nfl", Aliases: []string{"Dolphins", "Fins"}},
	{Canonical: "Minnesota Vikings", Domain: "nfl", Aliases: []string{"Vikings", "Vikes"}},
	{Canonical: "New England Patriots", Domain: "nfl", Aliases: []string{"Patriots", "Pats"}},
	{Canonical: "New Orleans Saints", Domain: "nfl", Aliases: []string{"Saints"}},
	{Canonical: "New York Giants", Domain: "nfl", Aliases: []string{"Giants", "NYG"}},
	{Canonical: "New York Jets", Domain: "nfl", Aliases: []string{"Jets", "NYJ"}},
	{Canonical: "Philadelphia Eagles", Domain: "nfl", Aliases: []string{"Eagles"}},
	{Canonical: "Pittsburgh Steelers", Domain: "nfl", Aliases: []string{"Steelers"}},
	{Canonical: "San Francisco 49ers", Domain: "nfl", Aliases: []string{"49ers", "Niners", "SF"}},
	{Canonical: "Seattle Seahawks", Domain: "nfl", Aliases: []string{"Seahawks"}},
	{Canonical: "Tampa Bay Buccaneers", Domain: "nfl", Aliases: []string{"Buccaneers", "Bucs", "TB"}},
	{Canonical: "Tennessee Titans", Domain: "nfl", Aliases: []string{"Titans"}},
	{Canonical: "Washington Commanders", Domain: "nfl", Aliases: []string{"Commanders", "Washington Football Team", "WFT"}},

	{Canonical: "Atlanta Hawks", Domain: "nba", Aliases: []string{"Hawks"}},
	{Canonical: "Boston Celtics", Domain: "nba", Aliases: []string{"Celtics"}},
	{Canonical: "Brooklyn Nets", Domain: "nba", Aliases: []string{"Nets", "BKN"}},
	{Canonical: "Charlotte Hornets", Domain: "nba", Aliases: []string{"Hornets"}},
	{Canonical: "Chicago Bulls", Domain: "nba", Aliases: []string{"Bulls"}},
	{Canonical: "Cleveland Cavaliers", Domain: "nba", Aliases: []string{"Cavaliers", "Cavs"}},
	{Canonical: "Dallas Mavericks", Domain: "nba", Aliases: []string{"Mavericks", "Mavs"}},
	{Canonical: "Denver Nuggets", Domain: "nba", Aliases: []string{"Nuggets"}},
	{Canonical: "Detroit Pistons", Domain: "nba", Aliases: []string{"Pistons"}},
	{Canonical: "Golden State Warriors", Domain: "nba", Aliases: []string{"Warriors", "Dubs", "GSW"}},
	{Canonical: "Houston Rockets", Domain: "nba", Aliases: []string{"Rockets"}},
	{Canonical: "Indiana Pacers", Domain: "nba", Aliases: []string{"Pacers"}},
	{Canonical: "Los Angeles Clippers", Domain: "nba", Aliases: []string{"Clippers", "Clips"}},
	{Canonical: "Los Angeles Lakers", Domain: "nba", Aliases: []string{"Lakers", "LAL"}},
	{Canonical: "Memphis Grizzlies", Domain: "nba", Aliases: []string{"Grizzlies", "Grizz"}},
	{Canonical: "Miami Heat", Domain: "nba", Aliases: []string{"Heat"}},
	{Canonical: "Milwaukee Bucks", Domain: "nba", Aliases: []string{"Bucks"}},
	{Canonical: "Minnesota Timberwolves", Domain: "nba", Aliases: []string{"Timberwolves", "Wolves"}},
	{Canonical: "New Orleans Pelicans", Domain: "nba", Aliases: []string{"Pelicans", "Pels"}},
	{Canonical: "New York Knicks", Domain: "nba", Aliases: []string{"Knicks", "NYK"}},
	{Canonical: "Oklahoma City Thunder", Domain: "nba", Aliases: []string{"Thunder", "OKC"}},
	{Canonical: "Orlando Magic", Domain: "nba", Aliases: []string{"Magic"}},
	{Canonical: "Philadelphia 76ers", Domain: "nba", Aliases: []string{"76ers", "Sixers"}},
	{Canonical: "Phoenix Suns", Domain: "nba", Aliases: []string{"Suns"}},
	{Canonical: "Portland Trail Blazers", Domain: "nba", Aliases: []string{"Trail Blazers", "Blazers"}},
	{Canonical: "Sacramento Kings", Domain: "nba", Aliases: []string{"Kings"}},
	{Canonical: "San Antonio Spurs", Domain: "nba", Aliases: []string{"Spurs"}},
	{Canonical: "Toronto Raptors", Domain: "nba", Aliases: []string{"Raptors"}},
	{Canonical: "Utah Jazz", Domain: "nba", Aliases: []string{"Jazz"}},
	{Canonical: "Washington Wizards", Domain: "nba", Aliases: []string{"Wizards"}},
}
