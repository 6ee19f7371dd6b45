package llm

type fixtureEvent struct {
	Title       string
	Type        string
	Venue       string
	Address     string
	OffsetDays  int
	Time        string
	Description string
	URL         string
	Image       any
}

var fixtureEvents = []fixtureEvent{
	{
		Title:       "Dupont Circle Farmers Market",
		Type:        "outdoors",
		Venue:       "Dupont Circle Market",
		Address:     "1600 20th St NW, Washington, DC 20009",
		OffsetDays:  1,
		Time:        "8:30 AM - 1:30 PM",
		Description: "Weekly open-air market showcasing regional farmers, artisan makers, and live chef demos in Dupont Circle.",
		URL:         "https://www.freshfarm.org/markets/dupont-circle-market",
		Image:       "https://images.unsplash.com/photo-1717646472043-8584872755ef?auto=format&fit=crop&q=80&w=1470",
	},
	{
		Title:       "DC Tech Meetup: AI Startups Showcase",
		Type:        "tech",
		Venue:       "NYU Brademas Center DC",
		Address:     "1307 L St NW, Washington, DC 20005",
		OffsetDays:  4,
		Time:        "6:30 PM - 8:30 PM",
		Description: "Pitch-style evening featuring emerging AI startups from the DMV region plus networking with local founders and investors.",
		URL:         "https://www.meetup.com/dc-tech-meetup/events/",
		Image:       nil,
	},
	{
		Title:       "Kennedy Center Millennium Stage: Free Jazz Night",
		Type:        "music",
		Venue:       "The John F. Kennedy Center for the Performing Arts",
		Address:     "2700 F St NW, Washington, DC 20566",
		OffsetDays:  6,
		Time:        "6:00 PM - 7:00 PM",
		Description: "Free nightly concert on the Millennium Stage featuring a rotating roster of jazz ensembles from across the District.",
		URL:         "https://www.kennedy-center.org/whats-on/millennium-stage/",
		Image:       "https://images.unsplash.com/photo-1415201364774-f6f0bb35f28f?auto=format&fit=crop&q=80&w=1470",
	},
	{
		Title:       "Kennedy Center Millennium Stage: Free Jazz Night",
		Type:        "music",
		Venue:       "The John F. Kennedy Center for the Performing Arts",
		Address:     "2700 F St NW, Washington, DC 20566",
		OffsetDays:  7,
		Time:        "6:00 PM - 7:00 PM",
		Description: "Free nightly concert on the Millennium Stage featuring a rotating roster of jazz ensembles from across the District.",
		URL:         "https://www.kennedy-center.org/whats-on/millennium-stage/",
		Image:       nil,
	},
	{
		Title:       "Smithsonian American Art: Curator Tour",
		Type:        "museum",
		Venue:       "Smithsonian American Art Museum",
		Address:     "8th and G Streets NW, Washington, DC 20004",
		OffsetDays:  2,
		Time:        "12:00 PM - 1:30 PM",
		Description: "Guided curator tour highlighting the newest contemporary art acquisitions.",
		URL:         "https://americanart.si.edu/calendar",
		Image:       "https://images.unsplash.com/photo-1651439504798-123517bec7b0?auto=format&fit=crop&q=80&w=1472",
	},
	{
		Title:       "Sunset Yoga on the Wharf",
		Type:        "outdoors",
		Venue:       "The Wharf Recreation Pier",
		Address:     "760 Maine Ave SW, Washington, DC 20024",
		OffsetDays:  5,
		Time:        "7:00 PM - 8:00 PM",
		Description: "Open-level vinyasa session along the Potomac with live acoustic music.",
		URL:         "https://www.wharfdc.com/upcoming-events/",
		Image:       "https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?auto=format&fit=crop&q=80&w=2120",
	},
	{
		Title:       "Capital Fringe: Late Night Cabaret",
		Type:        "other",
		Venue:       "Capital Fringe Headquarters",
		Address:     "1050 17th St NW, Washington, DC 20036",
		OffsetDays:  3,
		Time:        "10:00 PM - 11:59 PM",
		Description: "Experimental cabaret blending comedy, dance, and improv from local performers.",
		URL:         "https://www.capitalfringe.org/",
		Image:       nil,
	},
	{
		Title:       "Capitol Hill Book Fest Author Talk",
		Type:        "other",
		Venue:       "East City Bookshop",
		Address:     "645 Pennsylvania Ave SE, Washington, DC 20003",
		OffsetDays:  2,
		Time:        "6:00 PM - 7:00 PM",
		Description: "Author Q&A and signing for the latest release in a beloved historical fiction series.",
		URL:         "https://www.eastcitybookshop.com/event",
		Image:       "https://images.unsplash.com/photo-1521587760476-6c12a4b040da?auto=format&fit=crop&w=800&q=80",
	},
	{
		Title:       "Rock Creek Conservancy Trail Cleanup",
		Type:        "outdoors",
		Venue:       "Rock Creek Park Nature Center",
		Address:     "5200 Glover Rd NW, Washington, DC 20015",
		OffsetDays:  7,
		Time:        "9:00 AM - 11:30 AM",
		Description: "Volunteer trash pickup and invasive plant removal to keep DC trails pristine.",
		URL:         "https://www.rockcreekconservancy.org/calendar",
		Image:       nil,
	},
	{
		Title:       "Nationals vs. Cubs (Home Game)",
		Type:        "sports",
		Venue:       "Nationals Park",
		Address:     "1500 S Capitol St SE, Washington, DC 20003",
		OffsetDays:  3,
		Time:        "7:05 PM - 10:00 PM",
		Description: "Friday night baseball featuring post-game fireworks at the ballpark.",
		URL:         "https://www.mlb.com/nationals/tickets",
		Image:       "https://images.unsplash.com/photo-1519879709058-11082644047d?auto=format&fit=crop&q=80&w=1471",
	},
}
