package constants

// JurisdictionCountries are the ISO-3166 alpha-3 codes of the countries served
// by the Addis Ababa consular jurisdiction.
var JurisdictionCountries = map[string]struct{}{
	"ETH": {},
	"DJI": {},
	"ERI": {},
	"KEN": {},
	"UGA": {},
	"SOM": {},
	"SSD": {},
}

// JurisdictionAirports are the IATA codes of departure airports inside the
// jurisdiction.
var JurisdictionAirports = map[string]string{
	"ADD": "Addis Ababa",
	"JIB": "Djibouti",
	"ASM": "Asmara",
	"NBO": "Nairobi",
	"MBA": "Mombasa",
	"EBB": "Entebbe",
	"MGQ": "Mogadishu",
	"JUB": "Juba",
}

// CoteDivoireAirports are the IATA codes of airports in Côte d'Ivoire.
// ABJ is the expected destination for visa travel.
var CoteDivoireAirports = map[string]string{
	"ABJ": "Abidjan",
	"BYK": "Bouaké",
	"MJC": "Man",
	"SPY": "San-Pédro",
	"OGO": "Odienné",
	"HGO": "Korhogo",
}

// CoteDivoireCities lists cities recognized for hotel and inviter locations.
var CoteDivoireCities = []string{
	"ABIDJAN",
	"YAMOUSSOUKRO",
	"BOUAKE",
	"SAN-PEDRO",
	"SAN PEDRO",
	"KORHOGO",
	"DALOA",
	"MAN",
	"GAGNOA",
	"DIVO",
	"ANYAMA",
	"GRAND-BASSAM",
	"GRAND BASSAM",
	"ASSINIE",
	"BINGERVILLE",
	"COCODY",
	"MARCORY",
	"PLATEAU",
	"TREICHVILLE",
	"YOPOUGON",
}

// CityAliases maps common OCR spellings and district names to their canonical
// city.
var CityAliases = map[string]string{
	"ABJ":          "ABIDJAN",
	"ABIJAN":       "ABIDJAN",
	"ABIDJAN CITY": "ABIDJAN",
	"COCODY":       "ABIDJAN",
	"MARCORY":      "ABIDJAN",
	"PLATEAU":      "ABIDJAN",
	"TREICHVILLE":  "ABIDJAN",
	"YOPOUGON":     "ABIDJAN",
	"YAKRO":        "YAMOUSSOUKRO",
	"BASSAM":       "GRAND-BASSAM",
}

// YellowFeverExemptCountries do not require proof of yellow fever vaccination.
var YellowFeverExemptCountries = map[string]struct{}{
	"DZA": {},
	"EGY": {},
	"LBY": {},
	"MAR": {},
	"TUN": {},
}
