package directory

// Fixture returns the canned directory response served by the local stub
// endpoint. It ignores the query, like the stub it replaces.
func Fixture() Response {
	return Response{
		Results: []Listing{
			{Name: "Sun Store Apotheke", Website: "https://www.sunstore.ch", Phone: "+41 58 878 50 00", Address: "Route des Falaises 7", City: "Neuchâtel", Zip: "2000"},
			{Name: "Amavita Apotheke", Website: "https://www.amavita.ch", Phone: "+41 58 878 20 00", Address: "Untere Bahnhofstrasse 1", City: "Rapperswil", Zip: "8640"},
			{Name: "Apotheke am Bahnhof", Website: "https://apotheke-am-bahnhof.ch", Phone: "+41 44 123 45 67", Address: "Bahnhofsplatz 1", City: "Zürich", Zip: "8001"},
			{Name: "Coop Vitality", Website: "https://www.coop-vitality.ch", Phone: "+41 58 234 56 78", Address: "Industriestrasse 10", City: "Bern", Zip: "3000"},
		},
		Source: ProviderName,
		Status: statusSuccess,
	}
}
